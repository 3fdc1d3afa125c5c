package gid

import (
	"context"
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
)

const numTestChunks = 3

var testChunks = []chunk.Chunk{{X: 0}, {X: 1}, {X: 2}}

// cell places population id g in chunk g%3 at position g/3 within the chunk.
func cell(g int) connectivity.Endpoint {
	return connectivity.Endpoint{
		Chunk:  chunk.Chunk{X: int16(g % numTestChunks)},
		Local:  g / numTestChunks,
		Global: g,
	}
}

func link(pre, post int) connectivity.Edge {
	return connectivity.Edge{Pre: cell(pre), Post: cell(post)}
}

func countsOf(n int) map[chunk.Chunk]int {
	counts := make(map[chunk.Chunk]int)
	for g := 0; g < n; g++ {
		counts[cell(g).Chunk]++
	}

	return counts
}

func layoutsOn(chunks []chunk.Chunk, sizes map[string]int) map[string]Layout {
	layouts := make(map[string]Layout)
	for pop, n := range sizes {
		layouts[pop] = placement.NewLayout(countsOf(n), chunks)
	}

	return layouts
}

type worker struct {
	chunks    []chunk.Chunk
	layouts   map[string]Layout
	allocator *Allocator
	transMap  TransMap
}

func runWorker(
	sets []connectivity.Set,
	sizes map[string]int,
	rank, size int,
	r Range,
) *worker {
	w := &worker{chunks: chunk.Partition(testChunks, size)[rank]}
	w.layouts = layoutsOn(w.chunks, sizes)
	w.allocator = NewAllocator(r)

	tm, err := w.allocator.Allocate(context.Background(), sets, w.chunks, w.layouts)
	Expect(err).ToNot(HaveOccurred())
	w.transMap = tm

	return w
}

func randomNetwork(seed int64) ([]connectivity.Set, map[string]int) {
	rng := rand.New(rand.NewSource(seed))
	sizes := map[string]int{"A": 30, "B": 20, "C": 25}
	pairs := [][2]string{{"A", "B"}, {"A", "C"}, {"B", "C"}, {"A", "A"}, {"C", "B"}}

	sets := []connectivity.Set{}
	for _, p := range pairs {
		edges := []connectivity.Edge{}
		for i := 0; i < 60; i++ {
			e := link(rng.Intn(sizes[p[0]]), rng.Intn(sizes[p[1]]))
			e.Pre.Branch = rng.Intn(2)
			edges = append(edges, e)
		}

		sets = append(sets, connectivity.NewMemorySet(p[0]+"_to_"+p[1], p[0], p[1], edges))
	}

	return sets, sizes
}

var _ = Describe("Allocator", func() {
	It("should offset local senders by their global index", func() {
		set := connectivity.NewMemorySet("A_to_B", "A", "B", []connectivity.Edge{
			link(0, 0), link(1, 0), link(2, 0), link(2, 1),
		})

		w := runWorker([]connectivity.Set{set}, map[string]int{"A": 3}, 0, 2, Range{10, 100})

		Expect(w.chunks).To(Equal([]chunk.Chunk{{X: 0}, {X: 2}}))
		Expect(w.transMap["A_to_B"].Transmitters).To(Equal(map[Coord]GID{
			{Cell: 0}: 10,
			{Cell: 1}: 12,
		}))
		Expect(w.allocator.Next()).To(Equal(GID(13)))

		g, ok := w.allocator.Transmitter("A", Key{Cell: 2})
		Expect(ok).To(BeTrue())
		Expect(g).To(Equal(GID(12)))
	})

	It("should advance every worker by the same block size", func() {
		set := connectivity.NewMemorySet("A_to_B", "A", "B", []connectivity.Edge{
			link(0, 0), link(1, 0), link(2, 0),
		})

		for rank := 0; rank < 2; rank++ {
			w := runWorker([]connectivity.Set{set}, map[string]int{"A": 3}, rank, 2, Range{10, 100})
			Expect(w.allocator.Next()).To(Equal(GID(13)))
			Expect(w.allocator.Blocks()).To(Equal([]Block{{Set: "A_to_B", First: 10, Size: 3}}))
		}
	})

	It("should resolve receivers of remote senders", func() {
		set := connectivity.NewMemorySet("A_to_B", "A", "B", []connectivity.Edge{
			link(1, 0), link(2, 3),
		})

		w := runWorker([]connectivity.Set{set}, map[string]int{"A": 3}, 0, 2, Range{0, 10})

		Expect(w.transMap["A_to_B"].Receivers).To(Equal(map[Key]GID{
			{Cell: 1}: 0,
			{Cell: 2}: 1,
		}))
		Expect(w.transMap["A_to_B"].PreType).To(Equal("A"))
	})

	Context("when a population sends in several sets", func() {
		var sets []connectivity.Set

		BeforeEach(func() {
			filler := []connectivity.Edge{}
			for g := 0; g < 14; g++ {
				filler = append(filler, link(g, 0))
			}

			sets = []connectivity.Set{
				connectivity.NewMemorySet("s2", "A", "D", []connectivity.Edge{
					link(1, 0), link(2, 0), link(3, 4),
				}),
				connectivity.NewMemorySet("s1", "A", "B", []connectivity.Edge{
					link(3, 0),
				}),
				connectivity.NewMemorySet("s1b", "C", "B", filler),
			}
		})

		It("should keep the first assigned gid", func() {
			w := runWorker(sets, map[string]int{"A": 4, "C": 14}, 0, 1, Range{5, 100})

			Expect(w.allocator.Blocks()).To(Equal([]Block{
				{Set: "s1", First: 5, Size: 1},
				{Set: "s1b", First: 6, Size: 14},
				{Set: "s2", First: 20, Size: 3},
			}))

			// Cell 3 is in chunk 0 at local index 1, the only local cell of A
			// before it being cell 0.
			Expect(w.transMap["s1"].Transmitters).To(Equal(map[Coord]GID{{Cell: 1}: 5}))
			Expect(w.transMap["s2"].Transmitters[Coord{Cell: 1}]).To(Equal(GID(5)))
			Expect(w.transMap["s2"].Receivers[Key{Cell: 3}]).To(Equal(GID(5)))
			Expect(w.transMap["s2"].Receivers[Key{Cell: 2}]).To(Equal(GID(21)))
			Expect(w.allocator.Next()).To(Equal(GID(23)))
		})

		It("should reuse on workers that only receive", func() {
			// Cell 4 of D lives in chunk 1 which rank 1 owns. Rank 1 hosts
			// neither cell 3 of A nor any receiver of set s1.
			w := runWorker(sets, map[string]int{"A": 4, "C": 14, "D": 5}, 1, 2, Range{5, 100})

			Expect(w.transMap["s1"].Receivers).To(BeEmpty())
			Expect(w.transMap["s2"].Receivers).To(HaveKeyWithValue(Key{Cell: 3}, GID(5)))
		})
	})

	It("should be deterministic", func() {
		sets, sizes := randomNetwork(1)

		for rank := 0; rank < 3; rank++ {
			w1 := runWorker(sets, sizes, rank, 3, Range{0, 1000})
			w2 := runWorker(sets, sizes, rank, 3, Range{0, 1000})

			Expect(w1.transMap).To(Equal(w2.transMap))
			Expect(w1.allocator.Blocks()).To(Equal(w2.allocator.Blocks()))
		}
	})

	It("should not depend on the order the sets are given in", func() {
		sets, sizes := randomNetwork(2)
		reversed := make([]connectivity.Set, len(sets))
		for i, s := range sets {
			reversed[len(sets)-1-i] = s
		}

		w1 := runWorker(sets, sizes, 0, 2, Range{0, 1000})
		w2 := runWorker(reversed, sizes, 0, 2, Range{0, 1000})

		Expect(w1.transMap).To(Equal(w2.transMap))
	})

	It("should never give two senders the same gid", func() {
		sets, sizes := randomNetwork(3)
		w := runWorker(sets, sizes, 0, 1, Range{0, 1000})

		type sender struct {
			population string
			key        Key
		}

		owners := make(map[GID]sender)
		for pop, registry := range w.allocator.transmitters {
			for k, g := range registry {
				prev, taken := owners[g]
				Expect(taken).To(BeFalse(), "gid %d of %v also used by %v", g, k, prev)
				owners[g] = sender{pop, k}
				Expect(w.allocator.Range().Contains(g)).To(BeTrue())
			}
		}
	})

	It("should use the same blocks for any number of workers", func() {
		sets, sizes := randomNetwork(4)
		reference := runWorker(sets, sizes, 0, 1, Range{0, 1000}).allocator.Blocks()

		for _, size := range []int{2, 3, 4} {
			for rank := 0; rank < size; rank++ {
				w := runWorker(sets, sizes, rank, size, Range{0, 1000})
				Expect(w.allocator.Blocks()).To(Equal(reference))
			}
		}
	})

	It("should agree across workers on the gid of every link", func() {
		sets, sizes := randomNetwork(5)
		const size = 3

		workers := make([]*worker, size)
		for rank := range workers {
			workers[rank] = runWorker(sets, sizes, rank, size, Range{0, 1000})
		}

		alloc := chunk.NewAllocation(map[chunk.Chunk]chunk.Stats{
			{X: 0}: {}, {X: 1}: {}, {X: 2}: {},
		}, size)

		for _, s := range sets {
			edges, _ := s.All(context.Background())
			for _, e := range edges {
				receiving := workers[alloc.ChunkNode[e.Post.Chunk]]
				sending := workers[alloc.ChunkNode[e.Pre.Chunk]]

				cell, ok := sending.layouts[s.PreType()].Index(e.Pre.Chunk, e.Pre.Local)
				Expect(ok).To(BeTrue())

				sent := sending.transMap[s.Name()].Transmitters[Coord{Cell: cell, Branch: e.Pre.Branch}]
				heard := receiving.transMap[s.Name()].Receivers[KeyOf(e.Pre)]
				Expect(heard).To(Equal(sent))
			}
		}
	})

	It("should allocate an empty block for a set without edges", func() {
		set := connectivity.NewMemorySet("empty", "A", "B", nil)

		w := runWorker([]connectivity.Set{set}, map[string]int{}, 0, 1, Range{4, 5})

		Expect(w.allocator.Blocks()).To(Equal([]Block{{Set: "empty", First: 4, Size: 0}}))
		Expect(w.transMap["empty"].Transmitters).To(BeEmpty())
		Expect(w.transMap["empty"].Receivers).To(BeEmpty())
	})

	Context("with faults", func() {
		var (
			ctx      context.Context
			mockCtrl *gomock.Controller
			set      *MockSet
			layout   Layout
		)

		BeforeEach(func() {
			ctx = context.Background()
			mockCtrl = gomock.NewController(GinkgoT())
			set = NewMockSet(mockCtrl)
			set.EXPECT().Name().Return("A_to_B").AnyTimes()
			set.EXPECT().PreType().Return("A").AnyTimes()
			layout = placement.NewLayout(countsOf(3), testChunks)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should refuse to exceed the reserved range", func() {
			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(0, 0), link(1, 0)}, nil)

			a := NewAllocator(Range{0, 1})
			_, err := a.AllocateSet(ctx, set, testChunks, layout)

			Expect(errors.Is(err, ErrInconsistent)).To(BeTrue())
			Expect(a.Next()).To(Equal(GID(0)))
		})

		It("should fail when a local sender is unknown to the set", func() {
			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(0, 0)}, nil)
			set.EXPECT().From(ctx, testChunks).Return([]connectivity.Edge{link(1, 0)}, nil)

			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, layout)

			var inconsistency *InconsistencyError
			Expect(errors.As(err, &inconsistency)).To(BeTrue())
			Expect(inconsistency.Set).To(Equal("A_to_B"))
		})

		It("should fail when a local coordinate has two senders", func() {
			twin := link(2, 0)
			twin.Pre.Chunk = chunk.Chunk{X: 0}
			twin.Pre.Local = 0

			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(0, 0), twin}, nil)
			set.EXPECT().From(ctx, testChunks).Return([]connectivity.Edge{link(0, 0), twin}, nil)

			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, layout)

			Expect(err).To(MatchError(ErrInconsistent))
		})

		It("should fail when a sender is not placed on the worker", func() {
			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(1, 0)}, nil)
			set.EXPECT().From(ctx, testChunks).Return([]connectivity.Edge{link(1, 0)}, nil)

			narrow := placement.NewLayout(countsOf(3), []chunk.Chunk{{X: 0}})
			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, narrow)

			Expect(err).To(MatchError(ErrInconsistent))
		})

		It("should fail without a layout for local senders", func() {
			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(1, 0)}, nil)
			set.EXPECT().From(ctx, testChunks).Return([]connectivity.Edge{link(1, 0)}, nil)

			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, nil)

			Expect(err).To(MatchError(ErrInconsistent))
		})

		It("should fail when a receiver listens to an unknown sender", func() {
			set.EXPECT().All(ctx).Return([]connectivity.Edge{link(0, 0)}, nil)
			set.EXPECT().From(ctx, testChunks).Return(nil, nil)
			set.EXPECT().To(ctx, testChunks).Return([]connectivity.Edge{link(2, 0)}, nil)

			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, layout)

			Expect(err).To(MatchError(ErrInconsistent))
		})

		It("should pass storage errors through", func() {
			boom := errors.New("storage unavailable")
			set.EXPECT().All(ctx).Return(nil, boom)

			_, err := NewAllocator(Range{0, 10}).AllocateSet(ctx, set, testChunks, layout)

			Expect(err).To(MatchError(boom))
			Expect(errors.Is(err, ErrInconsistent)).To(BeFalse())
		})

		It("should reject duplicated set names", func() {
			set.EXPECT().All(ctx).Return(nil, nil)
			set.EXPECT().From(ctx, testChunks).Return(nil, nil)
			set.EXPECT().To(ctx, testChunks).Return(nil, nil)

			_, err := NewAllocator(Range{0, 10}).Allocate(ctx,
				[]connectivity.Set{set, set}, testChunks, map[string]Layout{"A": layout})

			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Reserver", func() {
	It("should hand out disjoint ranges", func() {
		r := NewReserver()

		a := r.Reserve(10)
		b := r.Reserve(0)
		c := r.Reserve(5)

		Expect(a).To(Equal(Range{0, 10}))
		Expect(b).To(Equal(Range{10, 10}))
		Expect(c).To(Equal(Range{10, 15}))
		Expect(c.Len()).To(Equal(int64(5)))
		Expect(r.Next()).To(Equal(GID(15)))
	})

	It("should panic on negative reservations", func() {
		Expect(func() { NewReserver().Reserve(-1) }).To(Panic())
	})
})
