package docstore_test

import (
	"bytes"
	"encoding/binary"

	"github.com/bsm/docstore"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SkipIndex", func() {
	readIndex := func(w *docstore.SkipIndexWriter) *docstore.SkipIndex {
		buf := new(bytes.Buffer)
		_, err := w.WriteTo(buf)
		Expect(err).NotTo(HaveOccurred())

		x, err := docstore.ReadSkipIndex(docstore.NewCursor(docstore.NewSource(buf.Bytes())))
		Expect(err).NotTo(HaveOccurred())
		return x
	}

	seekTuple := func(x *docstore.SkipIndex, q uint64) []uint64 {
		key, off := x.Seek(q)
		return []uint64{key, off}
	}

	It("should round-trip", func() {
		w := new(docstore.SkipIndexWriter)
		Expect(w.Append(1, 0)).To(Succeed())
		Expect(w.Append(9, 1044)).To(Succeed())
		Expect(w.Append(17, 2101)).To(Succeed())

		x := readIndex(w)
		Expect(x.Len()).To(Equal(3))
	})

	It("should seek floor entries", func() {
		w := new(docstore.SkipIndexWriter)
		Expect(w.Append(1, 0)).To(Succeed())
		Expect(w.Append(9, 1044)).To(Succeed())
		Expect(w.Append(17, 2101)).To(Succeed())
		x := readIndex(w)

		Expect(seekTuple(x, 0)).To(Equal([]uint64{0, 0}))
		Expect(seekTuple(x, 1)).To(Equal([]uint64{1, 0}))
		Expect(seekTuple(x, 8)).To(Equal([]uint64{1, 0}))
		Expect(seekTuple(x, 9)).To(Equal([]uint64{9, 1044}))
		Expect(seekTuple(x, 16)).To(Equal([]uint64{9, 1044}))
		Expect(seekTuple(x, 17)).To(Equal([]uint64{17, 2101}))
		Expect(seekTuple(x, 1000)).To(Equal([]uint64{17, 2101}))
	})

	It("should seek the default on empty indexes", func() {
		x := readIndex(new(docstore.SkipIndexWriter))
		Expect(x.Len()).To(Equal(0))
		Expect(seekTuple(x, 0)).To(Equal([]uint64{0, 0}))
		Expect(seekTuple(x, 42)).To(Equal([]uint64{0, 0}))
	})

	It("should prevent out-of-order appends", func() {
		w := new(docstore.SkipIndexWriter)
		Expect(w.Append(5, 100)).To(Succeed())
		Expect(w.Append(5, 200)).To(MatchError(ContainSubstring("out-of-order")))
		Expect(w.Append(4, 200)).To(MatchError(ContainSubstring("out-of-order")))
		Expect(w.Append(6, 50)).To(MatchError(ContainSubstring("out-of-order")))
		Expect(w.Append(6, 100)).To(Succeed())
	})

	It("should fail on truncated input", func() {
		buf := new(bytes.Buffer)
		w := new(docstore.SkipIndexWriter)
		Expect(w.Append(1, 0)).To(Succeed())
		Expect(w.Append(9, 1044)).To(Succeed())
		_, err := w.WriteTo(buf)
		Expect(err).NotTo(HaveOccurred())

		raw := buf.Bytes()
		_, err = docstore.ReadSkipIndex(docstore.NewCursor(docstore.NewSource(raw[:len(raw)-1])))
		Expect(err).To(MatchError(docstore.ErrCorrupted))
	})

	It("should fail on bogus entry counts", func() {
		// an absurd count must not be trusted for preallocation,
		// decoding fails once the input runs dry
		tmp := make([]byte, binary.MaxVarintLen64)
		n := binary.PutUvarint(tmp, 1<<62)

		_, err := docstore.ReadSkipIndex(docstore.NewCursor(docstore.NewSource(tmp[:n])))
		Expect(err).To(MatchError(docstore.ErrCorrupted))
	})
})
