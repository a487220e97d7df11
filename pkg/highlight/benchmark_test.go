package highlight

import (
	"testing"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
)

const benchmarkSource = `PROCÉDURE interne Calcul(x est un entier)
SI x = Vrai ALORS Trace("ok") SINON MaFonction(x.Libellé) FIN // fin
`

func BenchmarkHighlight_Line(b *testing.B) {
	h := newTestHighlighter(b, DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Highlight("Si x Sinon y")
	}
}

func BenchmarkHighlight_Block(b *testing.B) {
	h := newTestHighlighter(b, DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Highlight(benchmarkSource)
	}
}

func BenchmarkHighlight_Light(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Options.Light = true
	h := newTestHighlighter(b, cfg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Highlight(benchmarkSource)
	}
}

func BenchmarkReclassifier_Correct(b *testing.B) {
	h := newTestHighlighter(b, DefaultConfig())
	r := NewReclassifierNoCache(h.Indices())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Correct(grammar.KindCallable, "tracé(")
	}
}

func BenchmarkReclassifier_CacheHit(b *testing.B) {
	h := newTestHighlighter(b, DefaultConfig())
	r := NewReclassifier(h.Indices())
	r.Correct(grammar.KindCallable, "tracé(") // prime the cache

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Correct(grammar.KindCallable, "tracé(")
	}
}
