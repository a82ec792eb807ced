package signdict

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// SegmentPage partitions a page's raw content into regions bounded by
// separator lines. This is a coarse pre-partition: a region can still
// contain several run-together entries, which the entry segmenter
// splits afterwards. Without separators the whole page becomes one
// region.
func SegmentPage(content *PageContent, cfg Config) []PageRegion {
	if len(content.Separators) == 0 {
		return []PageRegion{{
			Images:     content.Images,
			TextBlocks: content.TextBlocks,
			Page:       content.Page,
			YStart:     0,
			YEnd:       math.Inf(1),
		}}
	}

	separators := make([]float64, len(content.Separators))
	copy(separators, content.Separators)
	sort.Float64s(separators)

	// Half-open intervals [0, s1), [s1, s2), ..., [sk, +inf).
	boundaries := make([]float64, 0, len(separators)+2)
	boundaries = append(boundaries, 0)
	boundaries = append(boundaries, separators...)
	boundaries = append(boundaries, math.Inf(1))

	var regions []PageRegion
	for i := 0; i < len(boundaries)-1; i++ {
		yStart, yEnd := boundaries[i], boundaries[i+1]

		var images []ImageBlock
		for _, img := range content.Images {
			if yStart <= img.YPosition() && img.YPosition() < yEnd {
				images = append(images, img)
			}
		}

		var textBlocks []TextBlock
		for _, tb := range content.TextBlocks {
			if yStart <= tb.YPosition() && tb.YPosition() < yEnd {
				textBlocks = append(textBlocks, tb)
			}
		}

		if len(images) == 0 && len(textBlocks) == 0 {
			continue
		}

		regions = append(regions, PageRegion{
			Images:     images,
			TextBlocks: textBlocks,
			Page:       content.Page,
			YStart:     yStart,
			YEnd:       yEnd,
			Separators: separators,
		})
	}

	cfg.logger().Debug("page segmented",
		zap.Int("page", content.Page+1),
		zap.Int("separators", len(separators)),
		zap.Int("regions", len(regions)))

	return regions
}
