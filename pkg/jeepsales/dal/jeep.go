package dal

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// JeepModel is a catalog model name
type JeepModel string

const (
	Wrangler      JeepModel = "WRANGLER"
	Gladiator     JeepModel = "GLADIATOR"
	Wrangler4xe   JeepModel = "WRANGLER_4XE"
	GrandCherokee JeepModel = "GRAND_CHEROKEE"
	Cherokee      JeepModel = "CHEROKEE"
	Compass       JeepModel = "COMPASS"
	Renegade      JeepModel = "RENEGADE"
)

// ErrUnknownModel is returned when a name is not one of the catalog models
var ErrUnknownModel = errors.New("unknown jeep model")

var (
	allJeepModels = []JeepModel{Wrangler, Gladiator, Wrangler4xe, GrandCherokee, Cherokee, Compass, Renegade}
	jeepModels    = modelSet(allJeepModels)
)

func modelSet(models []JeepModel) map[JeepModel]struct{} {
	set := make(map[JeepModel]struct{}, len(models))
	for _, m := range models {
		set[m] = struct{}{}
	}
	return set
}

// JeepModels returns every known model
func JeepModels() []JeepModel {
	return slices.Clone(allJeepModels)
}

// ParseJeepModel matches name against the model names exactly
func ParseJeepModel(name string) (JeepModel, error) {
	m := JeepModel(name)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// Valid reports whether m is a catalog model
func (m JeepModel) Valid() bool {
	_, ok := jeepModels[m]
	return ok
}

func (m JeepModel) String() string {
	return string(m)
}

// Jeep defines a catalog row
type Jeep struct {
	ModelPK   int64
	ModelID   JeepModel
	TrimLevel string
	NumDoors  int
	WheelSize int
	BasePrice decimal.Decimal
}

// JeepFilter narrows a lookup; nil fields match everything
type JeepFilter struct {
	Model *JeepModel
	Trim  *string
}

type jeepJSON struct {
	ModelPK   int64       `json:"modelPK"`
	ModelID   JeepModel   `json:"modelId"`
	TrimLevel string      `json:"trimLevel"`
	NumDoors  int         `json:"numDoors"`
	WheelSize int         `json:"wheelSize"`
	BasePrice json.Number `json:"basePrice"`
}

// MarshalJSON writes basePrice as a number with two fraction digits
func (j Jeep) MarshalJSON() ([]byte, error) {
	return json.Marshal(jeepJSON{
		ModelPK:   j.ModelPK,
		ModelID:   j.ModelID,
		TrimLevel: j.TrimLevel,
		NumDoors:  j.NumDoors,
		WheelSize: j.WheelSize,
		BasePrice: json.Number(j.BasePrice.StringFixed(2)),
	})
}

func (j *Jeep) UnmarshalJSON(data []byte) error {
	var v jeepJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	price, err := decimal.NewFromString(v.BasePrice.String())
	if err != nil {
		return fmt.Errorf("basePrice: %w", err)
	}
	*j = Jeep{
		ModelPK:   v.ModelPK,
		ModelID:   v.ModelID,
		TrimLevel: v.TrimLevel,
		NumDoors:  v.NumDoors,
		WheelSize: v.WheelSize,
		BasePrice: price,
	}
	return nil
}
