package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// DefaultCatalog maps tissues to the cell types the synthetic generator emits.
var DefaultCatalog = map[string][]string{
	"blood": {"B cell", "T cell", "monocyte", "natural killer cell", "platelet"},
	"lung":  {"T cell", "alveolar macrophage", "ciliated cell", "type II pneumocyte"},
	"heart": {"cardiac muscle cell", "endothelial cell", "fibroblast", "macrophage"},
}

// SyntheticConfig controls the synthetic expression generator.
type SyntheticConfig struct {
	Catalog        map[string][]string
	CellsPerTissue int
	Genes          int
	// MarkerGenes is the width of the block of genes each cell type over-expresses.
	MarkerGenes int
}

// DefaultSyntheticConfig returns the generator defaults.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Catalog:        DefaultCatalog,
		CellsPerTissue: 2000,
		Genes:          1000,
		MarkerGenes:    10,
	}
}

// SyntheticLoader generates non-negative expression values with a marker-gene
// block per cell type. Cells within a tissue are balanced across its types.
type SyntheticLoader struct {
	config SyntheticConfig
}

// NewSyntheticLoader creates a synthetic loader.
func NewSyntheticLoader(cfg SyntheticConfig) *SyntheticLoader {
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog
	}
	if cfg.CellsPerTissue < 1 {
		cfg.CellsPerTissue = 2000
	}
	if cfg.Genes < 1 {
		cfg.Genes = 1000
	}
	if cfg.MarkerGenes < 1 {
		cfg.MarkerGenes = 10
	}
	return &SyntheticLoader{config: cfg}
}

// Load implements Loader.
func (l *SyntheticLoader) Load(ctx context.Context, q Query) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tissues := lo.Filter(lo.Keys(l.config.Catalog), func(t string, _ int) bool {
		return matchesTissue(q.Tissues, t)
	})
	slices.Sort(tissues)
	if len(tissues) == 0 {
		return nil, fmt.Errorf("tissues %v: %w", q.Tissues, ErrNoData)
	}

	genes := l.config.Genes
	if q.NGenes > 0 {
		genes = q.NGenes
	}

	// Global type order keeps marker blocks stable regardless of the tissue filter.
	allTypes := lo.Uniq(lo.Flatten(lo.Values(l.config.Catalog)))
	slices.Sort(allTypes)
	typeIndex := make(map[string]int, len(allTypes))
	for i, t := range allTypes {
		typeIndex[t] = i
	}

	var labels, groups []string
	for _, tissue := range tissues {
		types := l.config.Catalog[tissue]
		if len(types) == 0 {
			continue
		}
		for i := 0; i < l.config.CellsPerTissue; i++ {
			labels = append(labels, types[i%len(types)])
			groups = append(groups, tissue)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("tissues %v: %w", q.Tissues, ErrNoData)
	}

	rows := sampleRows(lo.Range(len(labels)), q.MaxCells, q.Seed)
	rng := rand.New(rand.NewPCG(q.Seed, 0x5eed))

	x := mat.NewDense(len(rows), genes, nil)
	outLabels := make([]string, len(rows))
	outGroups := make([]string, len(rows))
	for i, r := range rows {
		row := x.RawRowView(i)
		for j := range row {
			row[j] = math.Abs(rng.NormFloat64()*2 + 5)
		}
		start := (typeIndex[labels[r]] * l.config.MarkerGenes) % genes
		for j := 0; j < l.config.MarkerGenes && j < genes; j++ {
			row[(start+j)%genes] += rng.NormFloat64()*3 + 5
		}
		outLabels[i] = labels[r]
		outGroups[i] = groups[r]
	}

	names := make([]string, genes)
	for j := range names {
		names[j] = fmt.Sprintf("Gene_%d", j)
	}

	return &Dataset{
		Features:     x,
		Labels:       outLabels,
		Groups:       outGroups,
		FeatureNames: names,
	}, nil
}

// sampleRows keeps at most maxCells rows, chosen by a seeded shuffle and
// returned in ascending order.
func sampleRows(rows []int, maxCells int, seed uint64) []int {
	if maxCells <= 0 || len(rows) <= maxCells {
		return rows
	}
	rng := rand.New(rand.NewPCG(seed, 0xce115))
	shuffled := slices.Clone(rows)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	kept := shuffled[:maxCells]
	slices.Sort(kept)
	return kept
}
