package snapshot

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/program"
)

func TestRead_RoundtripFullGraph(t *testing.T) {
	s := buildSampleImage(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s.prog, s.h, s.root))

	img, err := Read(buf.Bytes())
	require.NoError(t, err)

	require.Equal(t, s.prog.ClassCount(), img.Program.ClassCount())
	assert.Equal(t, "Point", img.Program.ClassName(s.pointID))
	assert.Equal(t, 2, img.Program.FieldCount(s.pointID))
	assert.Equal(t, "Segment", img.Program.ClassName(s.segmentID))
	assert.Equal(t, 3, img.Program.FieldCount(s.segmentID))

	var tags []heap.TypeTag
	for it := img.Store.Objects(); !it.EOS(); it.Advance() {
		tags = append(tags, it.Current().Tag())
	}
	assert.Equal(t, []heap.TypeTag{
		heap.TagString, heap.TagDouble, heap.TagLargeInteger, heap.TagByteArray,
		heap.TagInstance, heap.TagInstance, heap.TagInstance, heap.TagArray,
	}, tags)

	obj, err := img.Store.ObjectAt(img.Root)
	require.NoError(t, err)
	arr, err := heap.AsArray(obj)
	require.NoError(t, err)
	require.Equal(t, 3, arr.Length())
	assert.Equal(t, heap.Smi(99), arr.At(1))

	obj, err = img.Store.ObjectAt(arr.At(2))
	require.NoError(t, err)
	li, err := heap.AsLargeInteger(obj)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), li.Value())

	obj, err = img.Store.ObjectAt(arr.At(0))
	require.NoError(t, err)
	seg, err := heap.AsInstance(obj, img.Program)
	require.NoError(t, err)
	require.Equal(t, 3, seg.FieldCount())

	obj, err = img.Store.ObjectAt(seg.Field(0))
	require.NoError(t, err)
	p1, err := heap.AsInstance(obj, img.Program)
	require.NoError(t, err)
	assert.Equal(t, heap.Smi(3), p1.Field(0))
	assert.Equal(t, heap.Smi(-4), p1.Field(1))

	obj, err = img.Store.ObjectAt(seg.Field(1))
	require.NoError(t, err)
	p2, err := heap.AsInstance(obj, img.Program)
	require.NoError(t, err)
	assert.Equal(t, heap.Smi(7), p2.Field(0))

	obj, err = img.Store.ObjectAt(p2.Field(1))
	require.NoError(t, err)
	d, err := heap.AsDouble(obj)
	require.NoError(t, err)
	assert.Equal(t, 2.5, d.Value())

	obj, err = img.Store.ObjectAt(seg.Field(2))
	require.NoError(t, err)
	name, err := heap.AsString(obj, img.Store.Externals())
	require.NoError(t, err)
	assert.Equal(t, "origin", name.String())
	assert.Equal(t, s.name.Hash(), name.Hash())
	assert.False(t, name.IsExternal())
}

// Records travel in allocation order, not reachability order: an object
// nothing references still makes the trip.
func TestRead_UnreferencedObjectTravels(t *testing.T) {
	s := buildSampleImage(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s.prog, s.h, s.root))

	img, err := Read(buf.Bytes())
	require.NoError(t, err)

	var blob heap.ByteArray
	found := false
	for it := img.Store.Objects(); !it.EOS(); it.Advance() {
		if it.Current().Tag() != heap.TagByteArray {
			continue
		}
		blob, err = heap.AsByteArray(it.Current(), img.Store.Externals())
		require.NoError(t, err)
		found = true
	}
	require.True(t, found)
	assert.Equal(t, blobContent, blob.Bytes())
}

// Payloads above the cutoff load through the external path and alias the
// image buffer, even when the source heap held them inline.
func TestRead_ExternalPayloadsAliasImage(t *testing.T) {
	prog := program.New()
	h, err := heap.New(prog)
	require.NoError(t, err)
	defer h.Close()

	content := bytes.Repeat([]byte{0xAB}, ExternalCutoff+1)
	ba, err := h.AllocateByteArray(content)
	require.NoError(t, err)
	require.False(t, ba.IsExternal())

	text := strings.Repeat("s", ExternalCutoff+1)
	str, err := h.AllocateString(text)
	require.NoError(t, err)

	arr, err := h.AllocateArrayUnfilled(2)
	require.NoError(t, err)
	arr.SetAt(0, ba.Ref())
	arr.SetAt(1, str.Ref())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, prog, h, arr.Ref()))
	image := buf.Bytes()

	img, err := Read(image)
	require.NoError(t, err)

	obj, err := img.Store.ObjectAt(img.Root)
	require.NoError(t, err)
	root, err := heap.AsArray(obj)
	require.NoError(t, err)

	obj, err = img.Store.ObjectAt(root.At(0))
	require.NoError(t, err)
	loadedBA, err := heap.AsByteArray(obj, img.Store.Externals())
	require.NoError(t, err)
	require.True(t, loadedBA.IsExternal())
	require.Equal(t, content, loadedBA.Bytes())

	obj, err = img.Store.ObjectAt(root.At(1))
	require.NoError(t, err)
	loadedStr, err := heap.AsString(obj, img.Store.Externals())
	require.NoError(t, err)
	require.True(t, loadedStr.IsExternal())
	require.Equal(t, text, loadedStr.String())

	// The loaded payload is a window into the image buffer, not a copy.
	pos := bytes.Index(image, content)
	require.GreaterOrEqual(t, pos, 0)
	image[pos] = 0x01
	assert.Equal(t, byte(0x01), loadedBA.Bytes()[0])
}

func TestRead_CutoffBoundaryLoadsInternal(t *testing.T) {
	prog := program.New()
	h, err := heap.New(prog)
	require.NoError(t, err)
	defer h.Close()

	content := bytes.Repeat([]byte{7}, ExternalCutoff)
	ba, err := h.AllocateByteArray(content)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, prog, h, ba.Ref()))

	img, err := Read(buf.Bytes())
	require.NoError(t, err)

	obj, err := img.Store.ObjectAt(img.Root)
	require.NoError(t, err)
	loaded, err := heap.AsByteArray(obj, img.Store.Externals())
	require.NoError(t, err)
	assert.False(t, loaded.IsExternal())
	assert.Equal(t, content, loaded.Bytes())
}

func TestRead_EmptyImage(t *testing.T) {
	prog := program.New()
	h, err := heap.New(prog)
	require.NoError(t, err)
	defer h.Close()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, prog, h, heap.Smi(-5)))

	img, err := Read(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, heap.Smi(-5), img.Root)

	count := 0
	for it := img.Store.Objects(); !it.EOS(); it.Advance() {
		count++
	}
	assert.Zero(t, count)
}

// validEmptyImage is the shortest well-formed image: no classes, no
// objects, small-integer zero root.
func validEmptyImage() []byte {
	return []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0, // class count
		0, 0, 0, 0, // object count
		valueSmi, 0, 0, 0, 0, // root
	}
}

func TestRead_AcceptsMinimalImage(t *testing.T) {
	img, err := Read(validEmptyImage())
	require.NoError(t, err)
	assert.Equal(t, heap.Smi(0), img.Root)
}

func TestRead_RejectsBadMagic(t *testing.T) {
	image := validEmptyImage()
	image[0] = 'X'
	_, err := Read(image)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestRead_RejectsUnsupportedVersion(t *testing.T) {
	image := validEmptyImage()
	image[4] = 9
	_, err := Read(image)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

// Every proper prefix of a valid image must fail to decode; the root value
// sits at the very end, so no truncation point leaves a complete image.
func TestRead_RejectsEveryTruncation(t *testing.T) {
	s := buildSampleImage(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s.prog, s.h, s.root))
	image := buf.Bytes()

	for i := range image {
		_, err := Read(image[:i])
		require.Errorf(t, err, "prefix of %d bytes decoded", i)
	}
}

func TestRead_RejectsClassCountBeyondData(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0xFF, 0xFF, 0xFF, 0x7F, // far more class records than bytes follow
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestRead_RejectsUnknownRecordKind(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		1, 0, 0, 0,
		99, // no such record kind
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsUnknownValueTag(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		0, 0, 0, 0,
		7, 0, 0, 0, 0, // root with an undefined value tag
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsReferenceBeyondCount(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		1, 0, 0, 0,
		recordArray, 1, 0, 0, 0, // one-slot array
		valueRef, 5, 0, 0, 0, // slot references object 5 of 1
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsSmiOutOfRange(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		0, 0, 0, 0,
		valueSmi, 0x00, 0x00, 0x00, 0x40, // 1<<30, one past the ceiling
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsArrayBeyondCeiling(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		1, 0, 0, 0,
		recordArray,
	}
	image = binary.LittleEndian.AppendUint32(image, uint32(heap.MaxArrayLength+1))
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsStringMissingSentinel(t *testing.T) {
	image := []byte{
		'H', 'K', 'I', 'M', 1,
		0, 0, 0, 0,
		1, 0, 0, 0,
		recordString, 2, 0, 0, 0, 'h', 'i', 0xFF, // corrupt sentinel
	}
	_, err := Read(image)
	require.ErrorIs(t, err, ErrBadRecord)
}

func TestRead_RejectsInstanceClassMismatches(t *testing.T) {
	// The image below declares one class, "P" with two fields; ids assigned
	// during load match ids assigned here.
	scratch := program.New()
	pid, err := scratch.RegisterClass("P", 2)
	require.NoError(t, err)

	header := []byte{
		'H', 'K', 'I', 'M', 1,
		1, 0, 0, 0, // one class record
		1, 0, 'P', // name
		2, 0, 0, 0, // field count
		1, 0, 0, 0, // one object
		recordInstance,
	}

	wrongFields := append([]byte(nil), header...)
	wrongFields = binary.LittleEndian.AppendUint32(wrongFields, uint32(pid))
	wrongFields = binary.LittleEndian.AppendUint32(wrongFields, 3) // class has 2
	_, err = Read(wrongFields)
	require.ErrorIs(t, err, ErrBadRecord)

	unknownClass := append([]byte(nil), header...)
	unknownClass = binary.LittleEndian.AppendUint32(unknownClass, 1000)
	unknownClass = binary.LittleEndian.AppendUint32(unknownClass, 2)
	_, err = Read(unknownClass)
	require.ErrorIs(t, err, ErrBadRecord)

	notInstance := append([]byte(nil), header...)
	notInstance = binary.LittleEndian.AppendUint32(notInstance, 0) // the array built-in
	notInstance = binary.LittleEndian.AppendUint32(notInstance, 2)
	_, err = Read(notInstance)
	require.ErrorIs(t, err, ErrBadRecord)
}
