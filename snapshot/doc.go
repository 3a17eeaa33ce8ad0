// Package snapshot serializes program images to a position-independent byte
// stream and loads them back.
//
// # Overview
//
// A heap full of objects is only useful on the machine that built it if the
// references inside it encode block addresses. This package flattens a heap
// into records that reference each other by allocation-order index instead,
// so an image written on one machine loads on any other. Writing walks the
// heap once to index every object and once more to emit it; reading allocates
// every record into a fresh heap, patches references in a second pass, and
// hands the result over as a permanent store.
//
// # Writing
//
//	var buf bytes.Buffer
//	if err := snapshot.Write(&buf, prog, h, root); err != nil {
//	    return err
//	}
//
// The source may be a live heap or an already-migrated store; both expose
// the allocation-order iterator the writer needs.
//
// # Reading
//
//	img, err := snapshot.Read(data)
//	if err != nil {
//	    return err
//	}
//	obj, err := img.Store.ObjectAt(img.Root)
//
// Loaded strings and byte arrays above ExternalCutoff alias the image buffer
// directly rather than being copied into block space, so the buffer must
// outlive the image.
//
// # Manifests
//
// Manifest builds a heap from a TOML description of classes and objects.
// Fixture tests and the examples use it to declare images instead of
// hand-allocating them; see the Manifest type for the schema.
package snapshot
