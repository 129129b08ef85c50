package fphi_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/fphi/fphi"
)

var sinkResult *fphi.Result

func BenchmarkEstimate(b *testing.B) {
	for _, nfam := range []int{50, 250} {
		a, v := fphi.FamilyDesign(nfam, 4, 0.5, 0.4, 9, 1)
		b.Run(fmt.Sprintf("subjects=%d", a.N()), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r, err := fphi.Estimate(a, v, "")
				if err != nil {
					b.Fatal(err)
				}
				sinkResult = r
			}
		})
	}
}
