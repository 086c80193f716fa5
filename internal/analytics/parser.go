package analytics

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`Fono:\s*(\d+)`)
	namePattern    = regexp.MustCompile(`Nombre:\s*([^|]+)`)
	messagePattern = regexp.MustCompile(`Mensaje:\s*(.+)`)

	usedToolsPattern = regexp.MustCompile(`\[Used tools:\s*([^\]]+)\]`)
	toolPattern      = regexp.MustCompile(`Tool:\s*([^,]+)`)
)

// KnownBrands is the reference list matched by ExtractProductsMentioned.
// Order matters: results follow this order, not the order in the text.
var KnownBrands = []string{
	"Leviton", "Schneider", "ABB", "Siemens", "General Electric", "GE",
	"Legrand", "Eaton", "Philips", "Osram", "Sylvania", "Hubbell",
}

// HumanMessage holds the fields a customer writes in the
// "Fono: ... | Nombre: ... | Mensaje: ..." intake format.
type HumanMessage struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ParseHumanMessage extracts the intake fields. Missing markers yield empty
// strings, except Message which falls back to the whole content.
func ParseHumanMessage(content string) HumanMessage {
	parsed := HumanMessage{Message: content}

	if m := phonePattern.FindStringSubmatch(content); m != nil {
		parsed.Phone = strings.TrimSpace(m[1])
	}
	if m := namePattern.FindStringSubmatch(content); m != nil {
		parsed.Name = strings.TrimSpace(m[1])
	}
	if m := messagePattern.FindStringSubmatch(content); m != nil {
		parsed.Message = strings.TrimSpace(m[1])
	}

	return parsed
}

// ExtractToolsUsed returns tool names listed in a "[Used tools: Tool: x, ...]" block.
func ExtractToolsUsed(content string) []string {
	block := usedToolsPattern.FindStringSubmatch(content)
	if block == nil {
		return []string{}
	}

	matches := toolPattern.FindAllStringSubmatch(block[1], -1)
	tools := make([]string, 0, len(matches))
	for _, m := range matches {
		tools = append(tools, strings.TrimSpace(m[1]))
	}
	return tools
}

// ExtractProductsMentioned returns every known brand contained in content,
// case-insensitively, each at most once.
func ExtractProductsMentioned(content string) []string {
	lower := strings.ToLower(content)
	products := make([]string, 0)
	for _, brand := range KnownBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			products = appendUnique(products, brand)
		}
	}
	return products
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
