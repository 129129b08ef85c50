package kinship_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/fphi/kinship"
)

// ExampleCluster groups three individuals into two families.
func ExampleCluster() {
	const data = `IDA,IDB,KIN
A,A,0.5
B,B,0.5
C,C,0.5
A,B,0.25
`
	tbl, err := kinship.ReadTable(strings.NewReader(data), "kin.csv")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ped, err := kinship.Cluster(tbl, kinship.WithThreshold(0))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, p := range ped.Persons {
		fmt.Printf("%s seq=%d family=%d\n", p.OriginalID, p.SeqID, p.FamilyID)
	}
	// Output:
	// A seq=1 family=1
	// B seq=2 family=1
	// C seq=3 family=2
}
