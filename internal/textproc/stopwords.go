package textproc

// stopWordList holds short function words in the supported languages in
// their natural spelling. The lookup set is built at init by running each
// word through the same normalize+stem pipeline as document tokens, so the
// stop-word check always compares stemmed value against stemmed value.
var stopWordList = []string{
	// English
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
	"from", "has", "have", "he", "her", "his", "if", "in", "is", "it",
	"its", "of", "on", "or", "our", "she", "so", "that", "the", "their",
	"them", "then", "they", "this", "to", "was", "we", "were", "will",
	"with", "you", "your",
	// Russian
	"и", "в", "во", "не", "на", "я", "с", "со", "как", "а", "то",
	"она", "так", "его", "но", "да", "ты", "к", "у", "же", "вы", "за",
	"бы", "по", "ее", "мне", "было", "от", "меня", "о", "из", "ему",
	"ли", "для", "мы", "их", "чем", "была", "чтобы", "без", "будет",
	"он", "этот", "того", "этого", "при", "об", "или", "уже", "под",
	"над", "про", "еще", "них", "нас", "вас", "все", "это", "тот",
	"том", "кто", "что", "оно", "они",
	// Ukrainian
	"і", "та", "але", "що", "це", "до", "від", "із", "би", "чи", "ми",
	"ви", "вони", "його", "її", "коли", "де", "які", "який", "також",
	"тільки", "вже", "ще", "нам", "вам", "цей", "ця",
}

var stopWords map[string]struct{}

func init() {
	stopWords = make(map[string]struct{}, len(stopWordList))
	for _, w := range stopWordList {
		stopWords[Stem(Normalize(w))] = struct{}{}
	}
}

// IsStopWord reports whether a stemmed token value is a stop-word.
func IsStopWord(value string) bool {
	_, ok := stopWords[value]
	return ok
}
