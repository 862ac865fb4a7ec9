// Package dcbgo is a lazy-loading engine for DCB databases: proprietary
// structured binary files holding schema definitions and a large collection
// of typed records.
//
// Opening a database parses metadata only (header, string table, schema
// catalog, record index) in one synchronous pass. Record values stay on
// disk until asked for:
//
//   - Thread-safe per-record caching with explicit unload/eviction
//   - On-demand, schema-driven decoding of nested and referential values
//   - Random-offset reads into multi-gigabyte images via positioned reads
//     (local mmap, S3/MinIO ranged GETs, optional block cache)
//   - Bounded-parallel eager materialization with per-record error isolation
//
// # Quick Start
//
//	ctx := context.Background()
//	blob, err := blobstore.OpenFile("game.dcb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := dcbgo.Open(ctx, blob)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	for _, meta := range db.FindByStruct("Ship") {
//	    v, err := db.LoadRecord(ctx, meta)
//	    if err != nil {
//	        log.Printf("record %s: %v", meta.Guid, err)
//	        continue
//	    }
//	    name, _ := v.GetString("name")
//	    mass, _ := v.GetFloat("mass")
//	    fmt.Println(name, mass)
//	    db.Unload(meta) // reclaim the decoded value, metadata stays
//	}
//
// The engine is strictly read-only. References between records decode to
// GUIDs and resolve through GetRecord; nothing is loaded behind your back.
package dcbgo
