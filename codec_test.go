package docstore_test

import (
	"bytes"
	"math/rand"

	"github.com/bsm/docstore"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("BlockCodec", func() {
	codecs := []docstore.BlockCodec{docstore.LZ4, docstore.Snappy, docstore.Zstd, docstore.Raw}

	It("should look up codecs by name", func() {
		for _, codec := range codecs {
			found, ok := docstore.BlockCodecByName(codec.Name())
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(codec))
		}

		_, ok := docstore.BlockCodecByName("gzip")
		Expect(ok).To(BeFalse())
	})

	for _, codec := range codecs {
		codec := codec

		Describe(codec.Name(), func() {
			It("should round-trip compressible data", func() {
				src := bytes.Repeat([]byte("the quick brown fox "), 100)
				cmp := codec.Compress(nil, src)
				out, err := codec.Decompress(nil, cmp)
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(Equal(src))
			})

			It("should round-trip incompressible data", func() {
				src := make([]byte, 4096)
				rnd := rand.New(rand.NewSource(1))
				_, _ = rnd.Read(src)

				cmp := codec.Compress(nil, src)
				out, err := codec.Decompress(nil, cmp)
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(Equal(src))
			})

			It("should round-trip empty input", func() {
				cmp := codec.Compress(nil, nil)
				out, err := codec.Decompress(nil, cmp)
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(BeEmpty())
			})

			It("should reuse destination buffers", func() {
				src := bytes.Repeat([]byte("testdata"), 64)
				cmpbuf := make([]byte, 0, 4096)
				outbuf := make([]byte, 0, 4096)

				out, err := codec.Decompress(outbuf, codec.Compress(cmpbuf, src))
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(Equal(src))
			})
		})
	}
})
