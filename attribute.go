package signdict

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Strategy assigns a region's images to its entries. Implementations
// share one contract: the result has exactly one image list per entry,
// in entry order, and never places an image in two lists. Entries that
// cannot be matched get an empty list.
type Strategy interface {
	Name() string
	Distribute(entries []SplitEntry, images []ImageBlock) [][]ImageBlock
}

// ChooseStrategy picks the most precise applicable strategy for a
// region: text-region when at least one headword's y-position resolves
// against the text blocks, separator-region when the page has
// separator lines, position-only otherwise.
func ChooseStrategy(region PageRegion, entries []SplitEntry, cfg Config) Strategy {
	log := cfg.logger()

	if headwordResolvable(entries, region.TextBlocks) {
		return &TextRegionStrategy{
			TextBlocks: region.TextBlocks,
			ClusterGap: cfg.ClusterGap,
			Logger:     log,
		}
	}
	if len(region.Separators) > 0 {
		return &SeparatorStrategy{
			Separators:  region.Separators,
			PositionGap: cfg.PositionGap,
			Logger:      log,
		}
	}
	return &PositionStrategy{Gap: cfg.PositionGap, Logger: log}
}

func headwordResolvable(entries []SplitEntry, textBlocks []TextBlock) bool {
	for _, entry := range entries {
		for _, tb := range textBlocks {
			if strings.HasPrefix(strings.TrimSpace(tb.Text), entry.Headword) {
				return true
			}
		}
	}
	return false
}

// emptyLists returns one empty image list per entry.
func emptyLists(n int) [][]ImageBlock {
	return make([][]ImageBlock, n)
}

// assignGroups maps ordered image groups onto ordered entries by
// index. Surplus groups are dropped with a warning; surplus entries
// keep an empty list.
func assignGroups(entries []SplitEntry, groups [][]ImageBlock, log *zap.Logger, strategy string) [][]ImageBlock {
	result := make([][]ImageBlock, len(entries))
	for i, entry := range entries {
		if i < len(groups) {
			result[i] = groups[i]
			continue
		}
		log.Warn("no images available for entry",
			zap.String("strategy", strategy),
			zap.String("headword", entry.Headword))
	}

	if len(groups) > len(entries) {
		log.Warn("surplus image groups left unassigned",
			zap.String("strategy", strategy),
			zap.Int("groups", len(groups)),
			zap.Int("entries", len(entries)))
	}

	return result
}

// PositionStrategy is the last-resort attribution: images sorted by y,
// clustered wherever the vertical gap stays under Gap (a movement
// sequence sits tightly together), clusters handed to entries in
// order.
type PositionStrategy struct {
	Gap    float64
	Logger *zap.Logger
}

// Name implements Strategy.
func (s *PositionStrategy) Name() string { return "position" }

// Distribute implements Strategy.
func (s *PositionStrategy) Distribute(entries []SplitEntry, images []ImageBlock) [][]ImageBlock {
	if len(entries) == 0 {
		return nil
	}
	if len(images) == 0 {
		return emptyLists(len(entries))
	}

	sorted := sortedByY(images)

	groups := [][]ImageBlock{{sorted[0]}}
	for _, img := range sorted[1:] {
		last := groups[len(groups)-1]
		if img.YPosition()-last[len(last)-1].YPosition() < s.Gap {
			groups[len(groups)-1] = append(last, img)
		} else {
			groups = append(groups, []ImageBlock{img})
		}
	}

	s.Logger.Debug("grouped images by position",
		zap.Int("images", len(images)),
		zap.Int("groups", len(groups)),
		zap.Int("entries", len(entries)))

	return assignGroups(entries, groups, s.Logger, s.Name())
}

// SeparatorStrategy buckets images into the half-open y-intervals
// between separator lines and hands non-empty intervals to entries in
// order. Within an interval images sort by (y, x) so side-by-side
// frames keep their left-to-right order.
type SeparatorStrategy struct {
	Separators  []float64
	PositionGap float64
	Logger      *zap.Logger
}

// Name implements Strategy.
func (s *SeparatorStrategy) Name() string { return "separator" }

// Distribute implements Strategy.
func (s *SeparatorStrategy) Distribute(entries []SplitEntry, images []ImageBlock) [][]ImageBlock {
	if len(entries) == 0 {
		return nil
	}
	if len(images) == 0 {
		return emptyLists(len(entries))
	}
	if len(s.Separators) == 0 {
		s.Logger.Warn("no separators found, falling back to position-based distribution")
		fallback := &PositionStrategy{Gap: s.PositionGap, Logger: s.Logger}
		return fallback.Distribute(entries, images)
	}

	separators := make([]float64, len(s.Separators))
	copy(separators, s.Separators)
	sort.Float64s(separators)

	boundaries := make([]float64, 0, len(separators)+2)
	boundaries = append(boundaries, 0)
	boundaries = append(boundaries, separators...)
	boundaries = append(boundaries, math.Inf(1))

	buckets := make([][]ImageBlock, len(boundaries)-1)
	for _, img := range images {
		for i := 0; i < len(boundaries)-1; i++ {
			if boundaries[i] <= img.YPosition() && img.YPosition() < boundaries[i+1] {
				buckets[i] = append(buckets[i], img)
				break
			}
		}
	}

	var groups [][]ImageBlock
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].YPosition() != bucket[j].YPosition() {
				return bucket[i].YPosition() < bucket[j].YPosition()
			}
			return bucket[i].Box.X0 < bucket[j].Box.X0
		})
		groups = append(groups, bucket)
	}

	s.Logger.Debug("distributed images into separator regions",
		zap.Int("images", len(images)),
		zap.Int("regions", len(groups)),
		zap.Int("entries", len(entries)))

	return assignGroups(entries, groups, s.Logger, s.Name())
}

// TextRegionStrategy is the preferred attribution: it resolves each
// headword's y-position from the text blocks, clusters images by
// vertical proximity, and drops each whole cluster into the entry
// whose [y_i, y_i+1) interval contains the cluster's first image.
// A cluster is never split across entries.
type TextRegionStrategy struct {
	TextBlocks []TextBlock
	ClusterGap float64
	Logger     *zap.Logger
}

// Name implements Strategy.
func (s *TextRegionStrategy) Name() string { return "text-region" }

// Distribute implements Strategy.
func (s *TextRegionStrategy) Distribute(entries []SplitEntry, images []ImageBlock) [][]ImageBlock {
	if len(entries) == 0 {
		return nil
	}
	if len(images) == 0 {
		return emptyLists(len(entries))
	}

	headwordYs := s.headwordYPositions(entries)
	clusters := s.clusterImages(images)

	result := make([][]ImageBlock, len(entries))
	used := make([]bool, len(clusters))

	for i := range entries {
		entryY := headwordYs[i]
		nextY := math.Inf(1)
		if i+1 < len(entries) {
			nextY = headwordYs[i+1]
		}

		for ci, cluster := range clusters {
			if used[ci] {
				continue
			}
			// The cluster's first image stands in for the whole cluster.
			clusterY := cluster[0].YPosition()
			if entryY <= clusterY && clusterY < nextY {
				result[i] = append(result[i], cluster...)
				used[ci] = true
			}
		}

		if len(result[i]) == 0 {
			s.Logger.Warn("no images assigned to entry",
				zap.String("strategy", s.Name()),
				zap.String("headword", entries[i].Headword))
		}
	}

	unused := 0
	for _, u := range used {
		if !u {
			unused++
		}
	}
	if unused > 0 {
		s.Logger.Warn("image clusters left unassigned",
			zap.String("strategy", s.Name()),
			zap.Int("clusters", unused))
	}

	return result
}

// headwordYPositions locates each entry's headword among the text
// blocks. Unresolved headwords map to +Inf so they sort after every
// cluster.
func (s *TextRegionStrategy) headwordYPositions(entries []SplitEntry) []float64 {
	positions := make([]float64, len(entries))

	for i, entry := range entries {
		positions[i] = math.Inf(1)
		for _, tb := range s.TextBlocks {
			if strings.HasPrefix(strings.TrimSpace(tb.Text), entry.Headword) {
				positions[i] = tb.YPosition()
				break
			}
		}
		if math.IsInf(positions[i], 1) {
			s.Logger.Warn("could not resolve headword y-position",
				zap.String("headword", entry.Headword))
		}
	}

	return positions
}

// clusterImages groups images by vertical proximity and orders each
// cluster left-to-right, the reading order of a movement sequence.
func (s *TextRegionStrategy) clusterImages(images []ImageBlock) [][]ImageBlock {
	sorted := sortedByY(images)

	clusters := [][]ImageBlock{{sorted[0]}}
	for _, img := range sorted[1:] {
		last := clusters[len(clusters)-1]
		if img.YPosition()-last[len(last)-1].YPosition() < s.ClusterGap {
			clusters[len(clusters)-1] = append(last, img)
		} else {
			clusters = append(clusters, []ImageBlock{img})
		}
	}

	for _, cluster := range clusters {
		sort.SliceStable(cluster, func(i, j int) bool {
			return cluster[i].Box.X0 < cluster[j].Box.X0
		})
	}

	return clusters
}

func sortedByY(images []ImageBlock) []ImageBlock {
	sorted := make([]ImageBlock, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].YPosition() < sorted[j].YPosition()
	})
	return sorted
}
