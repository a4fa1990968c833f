package embedding

import (
	"context"
	"encoding/binary"
	"math"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/zeebo/blake3"
)

// HashEmbedder is an offline embedder using signed feature hashing over lower-cased
// whitespace tokens. Equal texts always produce equal unit vectors; blank text produces
// the zero vector.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder returns an embedder producing vectors of length dims.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 1536
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = h.embed(text)
	}
	return out, nil
}

func (h *HashEmbedder) embed(text string) []float64 {
	vec := make([]float64, h.dims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := blake3.Sum256([]byte(token))
		idx := binary.LittleEndian.Uint64(sum[:8]) % uint64(h.dims)
		if sum[8]&1 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
