package checkout

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

type RefKind int

const (
	RefByID RefKind = iota + 1
	RefByPosition
	RefByName
)

func (k RefKind) String() string {
	switch k {
	case RefByID:
		return "id"
	case RefByPosition:
		return "position"
	case RefByName:
		return "name"
	}
	return "unknown"
}

// PlantRef is a normalized plant reference from a cart line.
type PlantRef struct {
	Kind     RefKind
	Raw      string
	Position int
}

// ParseRef normalizes a loosely typed reference. JSON numbers and numeric
// strings become positional references, store identifiers become id
// references and anything else is matched by name.
func ParseRef(v interface{}) (PlantRef, error) {
	if v == nil {
		return PlantRef{}, invalidf("plant reference is required")
	}
	raw, err := cast.ToStringE(v)
	if err != nil {
		return PlantRef{}, invalidf("plant reference must be a string or number")
	}
	if strings.TrimSpace(raw) == "" {
		return PlantRef{}, invalidf("plant reference is required")
	}
	if common.ValidID(raw) {
		return PlantRef{Kind: RefByID, Raw: common.NormalizeID(raw)}, nil
	}
	if k, err := strconv.Atoi(raw); err == nil {
		return PlantRef{Kind: RefByPosition, Raw: raw, Position: k}, nil
	}
	return PlantRef{Kind: RefByName, Raw: raw}, nil
}

// matchName returns the index of the first plant whose name contains
// needle, compared with Unicode case folding, or -1.
func matchName(snapshot []domain.Plant, needle string) int {
	folded := cases.Fold().String(needle)
	for i := range snapshot {
		if strings.Contains(cases.Fold().String(snapshot[i].Name), folded) {
			return i
		}
	}
	return -1
}
