package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"
)

// defaultMethodology is printed when no description is configured for an
// employee's SLA id.
const defaultMethodology = `SLA Calculation Methodology:

Key Performance Indicators:
- Analytics Standards: All sites with GA and YM must comply with standards
- Sprint Task Completion: Percentage of tasks moved from 'In Progress' to 'Done'
- Dashboard Functionality: Working dashboard in each launched business unit

Color Coding System:
- Green: All standards met, 100% completion, fully functional dashboards
- Yellow: Minor issues resolved within 2 weeks, 90-99% completion
- Red: Data loss/restrictions, <90% completion, missing dashboards >1 week

Variable Pay Access Rules:
- 100% - All Green indicators
- 75% - 2 Green, 1 Yellow
- 50% - 2 Yellow, 1 Green
- 0% - More than 1 Red indicator`

// Descriptions resolves SLA methodology text by SLA id. Missing ids fall
// back to the default methodology so a slip always carries an explanation.
type Descriptions struct {
	byID   map[int]string
	logger arbor.ILogger
}

type descriptionsFile struct {
	Descriptions map[int]string `yaml:"descriptions"`
}

// NewDescriptions returns a resolver with no configured entries. Every
// lookup yields the default methodology text.
func NewDescriptions(logger arbor.ILogger) *Descriptions {
	return &Descriptions{
		byID:   map[int]string{},
		logger: logger,
	}
}

// LoadDescriptions reads methodology text from a YAML file keyed by SLA id.
func LoadDescriptions(path string, logger arbor.ILogger) (*Descriptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SLA descriptions file: %w", err)
	}

	var file descriptionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse SLA descriptions file: %w", err)
	}

	byID := make(map[int]string, len(file.Descriptions))
	for id, text := range file.Descriptions {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		byID[id] = text
	}

	logger.Info().Str("path", path).Int("descriptions", len(byID)).Msg("Loaded SLA methodology descriptions")

	return &Descriptions{
		byID:   byID,
		logger: logger,
	}, nil
}

// ForID returns the methodology text for the given SLA id, or the default
// text when the id has no configured description.
func (d *Descriptions) ForID(slaID int) string {
	if text, ok := d.byID[slaID]; ok {
		return text
	}
	d.logger.Debug().Int("sla_id", slaID).Msg("No SLA description configured, using default")
	return defaultMethodology
}
