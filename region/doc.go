// Package region reads and writes Anvil region files (.mca).
//
// A region file stores up to 1024 chunks of a 32x32 chunk area. The file
// starts with an 8 KiB header: a location table of 3-byte sector offsets and
// 1-byte sector counts, followed by a table of 4-byte modification times.
// Each chunk record begins at a 4096-byte sector boundary:
//
//	+--------------+-------------+-----------------------------+---------+
//	| length (u32) | scheme (u8) | compressed NBT (length - 1) | padding |
//	+--------------+-------------+-----------------------------+---------+
//
// Supported schemes are gzip (1), zlib (2), none (3), LZ4 (4) and custom
// (127). A scheme byte with bit 0x80 set marks a record whose payload lives
// in an external c.<x>.<z>.mcc file next to the region file.
//
// # Reading
//
//	r, err := region.Open("world/region/r.0.0.mca", region.WithReadOnly())
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for c, err := range r.Chunks() {
//	    if err != nil {
//	        log.Print(err) // one bad chunk does not stop the scan
//	        continue
//	    }
//	    fmt.Println(c.X, c.Z, len(c.Data))
//	}
//
// # Writing
//
// PutChunk and DeleteChunk stage changes in memory and update the header and
// free-space map immediately; Flush (or Close) writes them to disk. Freed
// sectors are reused first-fit, and the file is never shrunk.
//
// Local coordinates are 0..31 on both axes. Use WorldToLocal to split
// absolute chunk coordinates into region and local coordinates.
package region
