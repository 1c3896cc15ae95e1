// Package hashing provides position keys for fairy boards and a cache of
// evaluation scores keyed by them.
package hashing

import (
	"hash/fnv"

	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/engine"
)

// mix is the splitmix64 finaliser. It turns structured inputs into well
// spread 64-bit keys, so no random key tables are needed for an open set
// of kinds and board sizes.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func kindKey(k chess.Kind) uint64 {
	h := fnv.New64a()
	h.Write([]byte(k))
	return h.Sum64()
}

// pieceKey is the Zobrist key of pc standing on p. The move counter is
// part of the key because counting kinds move differently as it grows.
func pieceKey(p chess.Position, pc chess.Piece) uint64 {
	sq := uint64(p.File)<<8 | uint64(p.Rank)
	return mix(kindKey(pc.Kind) ^ mix(sq<<1|uint64(pc.Colour)) ^ mix(uint64(pc.Count)<<20))
}

// GenerateZobristHash returns the Zobrist hash of the pieces on b.
func GenerateZobristHash(b *chess.Board) uint64 {
	hash := mix(uint64(b.Size()))
	for _, p := range b.Positions() {
		pc, _ := b.At(p)
		hash ^= pieceKey(p, pc)
	}
	return hash
}

// WeakHash returns a cheap independent check value: the FNV-32 of the
// board's text form.
func WeakHash(b *chess.Board) uint32 {
	h := fnv.New32a()
	h.Write([]byte(b.String()))
	return h.Sum32()
}

// FrameHash extends the board hash with the side to move, castling state
// and en passant square, everything that changes what a position is worth.
func FrameHash(f engine.Frame) uint64 {
	hash := GenerateZobristHash(f.Board)
	if f.Turn == chess.Black {
		hash ^= mix(1 << 40)
	}
	for _, c := range chess.Colours {
		for _, side := range chess.Sides {
			if f.Castling[c][side] {
				hash ^= mix(2<<40 | uint64(c)<<1 | uint64(side))
			}
		}
		if f.Castled[c] >= 0 {
			hash ^= mix(3<<40 | uint64(c))
		}
	}
	if f.DoubleStep != nil {
		hash ^= mix(4<<40 | uint64(f.DoubleStep.File)<<8 | uint64(f.DoubleStep.Rank))
	}
	return hash
}

// Signature identifies a cached position.
type Signature struct {
	// Hash is the frame hash of the position
	Hash uint64
	// WeakHash guards against hash collisions
	WeakHash uint32
	// Perspective is the colour the score is from
	Perspective chess.Colour
}

// Entry is a cached evaluation.
type Entry struct {
	Signature
	Score float64
}

// EvalCache stores evaluation scores by position.
type EvalCache struct {
	// hashTable stores entries by frame hash
	hashTable map[uint64][]Entry
	// maxCapacity limits the number of entries; 0 means unlimited
	maxCapacity int
	count       int
	hits        int
	misses      int
}

// NewEvalCache creates an evaluation cache. maxCapacity of 0 means
// unlimited capacity.
func NewEvalCache(maxCapacity int) *EvalCache {
	return &EvalCache{
		hashTable:   make(map[uint64][]Entry),
		maxCapacity: maxCapacity,
	}
}

// SignatureOf builds the signature of the game's current position.
func SignatureOf(g *engine.Game, perspective chess.Colour) Signature {
	f := g.Frame()
	return Signature{
		Hash:        FrameHash(f),
		WeakHash:    WeakHash(f.Board),
		Perspective: perspective,
	}
}

// Lookup returns the cached score for sig.
func (c *EvalCache) Lookup(sig Signature) (float64, bool) {
	for _, e := range c.hashTable[sig.Hash] {
		if e.Signature == sig {
			c.hits++
			return e.Score, true
		}
	}
	c.misses++
	return 0, false
}

// Store records a score. It is a no-op once the cache is full or when sig
// is already present.
func (c *EvalCache) Store(sig Signature, score float64) {
	if c.IsFull() {
		return
	}
	for _, e := range c.hashTable[sig.Hash] {
		if e.Signature == sig {
			return
		}
	}
	c.hashTable[sig.Hash] = append(c.hashTable[sig.Hash], Entry{Signature: sig, Score: score})
	c.count++
}

// Len returns the number of cached entries.
func (c *EvalCache) Len() int {
	return c.count
}

// IsFull returns true if the cache has reached its capacity limit.
// Always returns false for unlimited capacity (maxCapacity = 0).
func (c *EvalCache) IsFull() bool {
	return c.maxCapacity > 0 && c.count >= c.maxCapacity
}

// Stats returns the number of lookup hits and misses.
func (c *EvalCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Reset clears the cache.
func (c *EvalCache) Reset() {
	c.hashTable = make(map[uint64][]Entry)
	c.count = 0
	c.hits = 0
	c.misses = 0
}
