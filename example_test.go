package dcbgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/dcbgo"
	"github.com/hupe1980/dcbgo/format"
	"github.com/hupe1980/dcbgo/testutil"
)

func Example() {
	// Normally the blob comes from blobstore.OpenFile or an object store;
	// here a small image is built in memory.
	b := testutil.NewBuilder()
	ship := b.AddStruct("Ship", format.NoneID, format.StructFlagEntity,
		testutil.P("name", format.TypeString),
		testutil.P("mass", format.TypeFloat32))
	b.AddRecord(ship, "Aurora", format.GUID{1},
		b.NewValue().String("Aurora").Float32(39000).Bytes())
	b.AddRecord(ship, "Freelancer", format.GUID{2},
		b.NewValue().String("Freelancer").Float32(78500).Bytes())

	ctx := context.Background()
	db, err := dcbgo.Open(ctx, b.Blob())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	for _, meta := range db.FindByStruct("Ship") {
		v, err := db.LoadRecord(ctx, meta)
		if err != nil {
			log.Fatal(err)
		}
		name, _ := v.GetString("name")
		mass, _ := v.GetFloat("mass")
		fmt.Printf("%s %g\n", name, mass)
		db.Unload(meta)
	}
	// Output:
	// Aurora 39000
	// Freelancer 78500
}
