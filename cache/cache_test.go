package cache_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("Cache", func() {
	// Tiny direct-mapped geometry: 2 lines of 16 bytes.
	directMapped := cache.Config{
		BlockSize:             16,
		Associativity:         1,
		Capacity:              32,
		MissPenalty:           30,
		DirtyWritebackPenalty: 2,
	}

	// Fully-associative geometry: one set of 4 lines.
	fullyAssociative := cache.Config{
		BlockSize:             16,
		Associativity:         4,
		Capacity:              64,
		MissPenalty:           30,
		DirtyWritebackPenalty: 2,
	}

	Describe("Construction", func() {
		It("should reject a geometry that fails validation", func() {
			bad := directMapped
			bad.BlockSize = 24

			_, err := cache.New(bad)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Address decoding", func() {
		It("should partition addresses losslessly", func() {
			config := cache.DefaultConfig()
			c, err := cache.New(config)
			Expect(err).NotTo(HaveOccurred())

			// 16B blocks in a 16KB direct-mapped cache: 4 offset bits,
			// 10 set bits, tag above them.
			addresses := []uint64{
				0x0, 0x10, 0xDEADBEEF, 0xFFFFFFFFFFFFFFFF, 0x123456789AB,
			}
			for _, addr := range addresses {
				tag, set := c.Decode(addr)
				rebuilt := tag<<14 | uint64(set)<<4 | (addr & 0xF)
				Expect(rebuilt).To(Equal(addr))
			}
		})

		It("should map addresses in one block to the same tag and set", func() {
			c, err := cache.New(directMapped)
			Expect(err).NotTo(HaveOccurred())

			tagA, setA := c.Decode(0x100)
			tagB, setB := c.Decode(0x10F)
			Expect(tagA).To(Equal(tagB))
			Expect(setA).To(Equal(setB))
		})
	})

	Describe("Direct-mapped probing", func() {
		var c *cache.Cache

		BeforeEach(func() {
			var err error
			c, err = cache.New(directMapped)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should miss on a cold cache and hit on re-access", func() {
			first := c.Read(0x00)
			Expect(first.Hit).To(BeFalse())
			Expect(first.ExtraLatency).To(Equal(uint64(30)))

			second := c.Read(0x10)
			Expect(second.Hit).To(BeFalse())
			Expect(second.ExtraLatency).To(Equal(uint64(30)))

			third := c.Read(0x00)
			Expect(third.Hit).To(BeTrue())
			Expect(third.ExtraLatency).To(Equal(uint64(0)))
		})

		It("should charge the writeback penalty when evicting a dirty line", func() {
			written := c.Write(0x00)
			Expect(written.Hit).To(BeFalse())
			Expect(written.DirtyWriteback).To(BeFalse())

			// 0x20 aliases 0x00 in a 2-line direct-mapped cache.
			evicting := c.Read(0x20)
			Expect(evicting.Hit).To(BeFalse())
			Expect(evicting.DirtyWriteback).To(BeTrue())
			Expect(evicting.ExtraLatency).To(Equal(uint64(32)))
		})

		It("should write back a dirty line exactly once", func() {
			c.Write(0x00)

			first := c.Read(0x20)
			Expect(first.DirtyWriteback).To(BeTrue())

			// The replacement line was filled by a read, so the next
			// conflict evicts a clean line.
			second := c.Read(0x40)
			Expect(second.Hit).To(BeFalse())
			Expect(second.DirtyWriteback).To(BeFalse())
		})

		It("should not charge a writeback when evicting a clean line", func() {
			c.Read(0x00)

			evicting := c.Read(0x20)
			Expect(evicting.Hit).To(BeFalse())
			Expect(evicting.DirtyWriteback).To(BeFalse())
			Expect(evicting.ExtraLatency).To(Equal(uint64(30)))
		})
	})

	Describe("Dirty state", func() {
		var c *cache.Cache

		BeforeEach(func() {
			var err error
			c, err = cache.New(directMapped)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should mark a line dirty on a write hit", func() {
			c.Read(0x00)
			c.Write(0x00)

			state := c.SetState(0)
			Expect(state[0].Valid).To(BeTrue())
			Expect(state[0].Dirty).To(BeTrue())
		})

		It("should track the resident line's state from the latest access", func() {
			c.Write(0x00)
			c.Read(0x00)

			state := c.SetState(0)
			Expect(state[0].Dirty).To(BeFalse())
		})
	})

	Describe("LRU replacement", func() {
		var c *cache.Cache

		BeforeEach(func() {
			var err error
			c, err = cache.New(fullyAssociative)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should evict the least recently used line under pressure", func() {
			// Fill the single set with four distinct blocks.
			for _, addr := range []uint64{0x00, 0x10, 0x20, 0x30} {
				Expect(c.Read(addr).Hit).To(BeFalse())
			}

			// A fifth block evicts the stalest line, 0x00.
			Expect(c.Read(0x40).Hit).To(BeFalse())

			Expect(c.Read(0x10).Hit).To(BeTrue())
			Expect(c.Read(0x20).Hit).To(BeTrue())
			Expect(c.Read(0x30).Hit).To(BeTrue())
			Expect(c.Read(0x00).Hit).To(BeFalse())
		})

		It("should refresh recency on a hit", func() {
			for _, addr := range []uint64{0x00, 0x10, 0x20, 0x30} {
				c.Read(addr)
			}

			// Touch 0x00 so 0x10 becomes the stalest line.
			Expect(c.Read(0x00).Hit).To(BeTrue())

			c.Read(0x40)
			Expect(c.Read(0x00).Hit).To(BeTrue())
			Expect(c.Read(0x10).Hit).To(BeFalse())
		})

		It("should keep priorities within the associativity bound", func() {
			for _, addr := range []uint64{
				0x00, 0x10, 0x20, 0x30, 0x40, 0x00, 0x20, 0x50, 0x10,
			} {
				c.Read(addr)
			}

			for _, l := range c.SetState(0) {
				Expect(l.Priority).To(BeNumerically(">=", 0))
				Expect(l.Priority).To(BeNumerically("<=", fullyAssociative.Associativity))
			}
		})

		It("should never hold the same tag in two lines of a set", func() {
			for _, addr := range []uint64{
				0x00, 0x10, 0x00, 0x20, 0x30, 0x40, 0x00, 0x10, 0x20,
			} {
				c.Read(addr)
			}

			seen := map[uint64]bool{}
			for _, l := range c.SetState(0) {
				if !l.Valid {
					continue
				}
				Expect(seen[l.Tag]).To(BeFalse())
				seen[l.Tag] = true
			}
		})
	})

	Describe("Reset", func() {
		It("should return every line to invalid and clean", func() {
			c, err := cache.New(fullyAssociative)
			Expect(err).NotTo(HaveOccurred())

			c.Write(0x00)
			c.Write(0x10)
			c.Reset()

			for _, l := range c.SetState(0) {
				Expect(l.Valid).To(BeFalse())
				Expect(l.Dirty).To(BeFalse())
			}

			Expect(c.Read(0x00).Hit).To(BeFalse())
		})
	})
})

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}
