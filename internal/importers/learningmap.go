package importers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mrlokans/session-catalog/internal/entities"
)

const learningMapAttribute = "learningmap"

// LearningMapsFromCatalog flattens the learningmap attribute of a catalogue
// response into one LearningMap per child value, in catalogue order.
func LearningMapsFromCatalog(attrs []entities.RawItem) ([]entities.LearningMap, error) {
	var attr entities.RawItem
	for _, a := range attrs {
		if a["id"] == learningMapAttribute {
			attr = a
			break
		}
	}
	if attr == nil {
		return nil, ErrNoLearningMaps
	}

	values, _ := attr["values"].([]any)
	var maps []entities.LearningMap
	for i, v := range values {
		value, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("learningmap value %d is not an object", i)
		}
		id, _ := value["id"].(string)
		category := strings.ReplaceAll(strings.TrimRightFunc(id, unicode.IsSpace), "\u200e", "")

		child, _ := value["child"].(map[string]any)
		children, _ := child["values"].([]any)
		for _, c := range children {
			cm, ok := c.(map[string]any)
			if !ok {
				continue
			}
			mapID, _ := cm["id"].(string)
			if mapID == "" {
				continue
			}
			name, _ := cm["name"].(string)
			maps = append(maps, entities.LearningMap{
				Category: category,
				Name:     strings.ReplaceAll(name, "\u200b", ""),
				ID:       mapID,
			})
		}
	}
	return maps, nil
}
