package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringArray is a string list stored as a JSON column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return jsonValue(a)
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	*a = StringArray{}
	return jsonScan(value, a)
}

func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// RecipeIngredient is one line of a recipe's ingredient list
type RecipeIngredient struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Available bool   `json:"available"`
}

// RecipeIngredients is stored as a JSON column
type RecipeIngredients []RecipeIngredient

func (r RecipeIngredients) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	return jsonValue(r)
}

func (r *RecipeIngredients) Scan(value interface{}) error {
	*r = RecipeIngredients{}
	return jsonScan(value, r)
}

func (RecipeIngredients) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// Preferences are the per-user settings used when generating recipes
type Preferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
	FavoriteCuisines    []string `json:"favorite_cuisines"`
	Allergies           []string `json:"allergies"`
}

func (p Preferences) Value() (driver.Value, error) {
	return jsonValue(p.normalized())
}

func (p *Preferences) Scan(value interface{}) error {
	*p = Preferences{}
	if err := jsonScan(value, p); err != nil {
		return err
	}
	*p = p.normalized()
	return nil
}

func (Preferences) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// normalized replaces nil lists with empty ones so they serialize as []
func (p Preferences) normalized() Preferences {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return Preferences{
		DietaryRestrictions: orEmpty(p.DietaryRestrictions),
		ExcludedIngredients: orEmpty(p.ExcludedIngredients),
		FavoriteCuisines:    orEmpty(p.FavoriteCuisines),
		Allergies:           orEmpty(p.Allergies),
	}
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}
