package seostats

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/tsumibito/seoscan/internal/models"
)

// ContentSignature hashes the full input tuple of a stats computation.
// It is order-sensitive and deterministic across runs; signatures are only
// ever compared to other signatures computed the same way, never persisted
// across schema changes.
func ContentSignature(focusPhrase string, ctx models.SeoContentContext) string {
	var b strings.Builder
	sep := func() { b.WriteByte(0) }

	b.WriteString(focusPhrase)
	sep()
	b.WriteString(ctx.Name)
	sep()
	b.WriteString(ctx.SeoTitle)
	sep()
	b.WriteString(ctx.MetaDescription)
	sep()
	b.WriteString(ctx.Summary)
	sep()
	b.WriteString(ctx.ContentText)
	sep()
	b.WriteString(strconv.Itoa(len(ctx.HeadingsText)))
	for _, h := range ctx.HeadingsText {
		sep()
		b.WriteString(h)
	}
	sep()
	b.WriteString(ctx.FaqText)
	sep()
	b.WriteString(strconv.Itoa(len(ctx.Keywords)))
	for _, k := range ctx.Keywords {
		sep()
		b.WriteString(k)
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
