package chunk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chunk", func() {
	It("should round trip through the packed id", func() {
		for _, c := range []Chunk{{0, 0, 0}, {1, 2, 3}, {-1, 5, -7}, {32767, -32768, 0}} {
			Expect(FromID(c.ID())).To(Equal(c))
		}
	})

	It("should order by id", func() {
		Expect(Compare(Chunk{1, 0, 0}, Chunk{0, 1, 0})).To(Equal(-1))
		Expect(Compare(Chunk{0, 0, 1}, Chunk{0, 1, 0})).To(Equal(1))
		Expect(Compare(Chunk{2, 2, 2}, Chunk{2, 2, 2})).To(Equal(0))
	})

	It("should sort and deduplicate sets", func() {
		s := NewSet(Chunk{2, 0, 0}, Chunk{0, 0, 0}, Chunk{2, 0, 0}, Chunk{1, 0, 0})

		Expect(s).To(Equal(Set{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}))
		Expect(s.Contains(Chunk{1, 0, 0})).To(BeTrue())
		Expect(s.Contains(Chunk{3, 0, 0})).To(BeFalse())
	})

	It("should sum outgoing connections", func() {
		stats := map[Chunk]Stats{
			{0, 0, 0}: {ConnectionsOut: 4},
			{1, 0, 0}: {ConnectionsOut: 6, ConnectionsIn: 100},
		}

		Expect(TotalOutgoing(stats)).To(Equal(10))
	})
})
