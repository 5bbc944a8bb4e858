package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmassey-dev/crucible/pkg/dice"
	"github.com/dmassey-dev/crucible/pkg/srd"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dataDir := os.Args[1]
	validator := &SRDValidator{}

	if err := validator.validateDataDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("SRD data is valid! (%d entries checked)\n", validator.checked)
}

type SRDValidator struct {
	errors  []string
	checked int
}

var categories = []srd.Category{
	srd.CategoryMonsters,
	srd.CategorySpells,
	srd.CategoryEquipment,
	srd.CategoryConditions,
}

func (v *SRDValidator) validateDataDir(dataDir string) error {
	srdDir := filepath.Join(dataDir, "srd")
	if _, err := os.Stat(srdDir); err != nil {
		return fmt.Errorf("srd directory not found at %s: %w", srdDir, err)
	}

	for _, category := range categories {
		dir := filepath.Join(srdDir, string(category))
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			v.validateFile(category, filepath.Join(dir, entry.Name()))
		}
	}

	if v.checked == 0 {
		return fmt.Errorf("no SRD entries found under %s", srdDir)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *SRDValidator) validateFile(category srd.Category, filename string) {
	v.checked++

	baseName := filepath.Base(filename)
	slug := strings.TrimSuffix(baseName, ".json")
	if !isValidSlug(slug) {
		v.addError(fmt.Sprintf("%s: filename must be a lowercase kebab-case slug (e.g. dire-wolf.json)", filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		v.addError(fmt.Sprintf("%s: failed to read: %v", filename, err))
		return
	}
	if !json.Valid(data) {
		v.addError(fmt.Sprintf("%s: invalid JSON", filename))
		return
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	switch category {
	case srd.CategoryMonsters:
		var m srd.Monster
		if err := decoder.Decode(&m); err != nil {
			v.addError(fmt.Sprintf("%s: failed strict unmarshaling: %v", filename, err))
			return
		}
		v.validateMonster(&m, filename)
	case srd.CategorySpells:
		var s srd.Spell
		if err := decoder.Decode(&s); err != nil {
			v.addError(fmt.Sprintf("%s: failed strict unmarshaling: %v", filename, err))
			return
		}
		v.validateSpell(&s, filename)
	case srd.CategoryEquipment:
		var e srd.Equipment
		if err := decoder.Decode(&e); err != nil {
			v.addError(fmt.Sprintf("%s: failed strict unmarshaling: %v", filename, err))
			return
		}
		if e.Name == "" {
			v.addError(fmt.Sprintf("%s: name is required", filename))
		}
		v.validateDice(e.DamageDice, filename, false)
	case srd.CategoryConditions:
		var c srd.Condition
		if err := decoder.Decode(&c); err != nil {
			v.addError(fmt.Sprintf("%s: failed strict unmarshaling: %v", filename, err))
			return
		}
		if c.Name == "" {
			v.addError(fmt.Sprintf("%s: name is required", filename))
		}
	}
}

func (v *SRDValidator) validateMonster(m *srd.Monster, filename string) {
	if m.Name == "" {
		v.addError(fmt.Sprintf("%s: name is required", filename))
	}
	if m.HP <= 0 {
		v.addError(fmt.Sprintf("%s: hp must be positive", filename))
	}
	if m.AC <= 0 {
		v.addError(fmt.Sprintf("%s: ac must be positive", filename))
	}
	if m.XP < 0 {
		v.addError(fmt.Sprintf("%s: xp must not be negative", filename))
	}
	v.validateDice(m.DamageDice, filename, true)
}

func (v *SRDValidator) validateSpell(s *srd.Spell, filename string) {
	if s.Name == "" {
		v.addError(fmt.Sprintf("%s: name is required", filename))
	}
	if s.Level < 0 || s.Level > 9 {
		v.addError(fmt.Sprintf("%s: level must be between 0 and 9", filename))
	}
	v.validateDice(s.DamageDice, filename, false)
}

func (v *SRDValidator) validateDice(expr string, filename string, required bool) {
	if expr == "" {
		if required {
			v.addError(fmt.Sprintf("%s: damage_dice is required", filename))
		}
		return
	}
	if !dice.Valid(expr) {
		v.addError(fmt.Sprintf("%s: invalid damage_dice %q", filename, expr))
	}
}

func (v *SRDValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validSlugRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

func isValidSlug(slug string) bool {
	return validSlugRegex.MatchString(slug)
}
