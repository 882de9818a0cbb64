package lexicon

import (
	"fmt"
	"sort"
)

// Crisis returns the crisis lexicon: six weighted risk categories and four
// protective factor categories.
func Crisis() *Lexicon {
	return MustNew("crisis", []Category{
		{
			Name:     "suicide_direct",
			Kind:     KindRisk,
			Keywords: []string{"suicidio", "suicidarme", "quitarme la vida", "acabar conmigo", "matarme"},
			Weight:   10,
			Severity: "critical",
		},
		{
			Name:     "suicide_indirect",
			Kind:     KindRisk,
			Keywords: []string{"no quiero vivir", "mejor muerto", "sin mí estarían mejor", "no vale la pena vivir"},
			Weight:   8,
			Severity: "high",
		},
		{
			Name:     "self_harm",
			Kind:     KindRisk,
			Keywords: []string{"cortarme", "lastimarme", "hacerme daño", "autolesión", "herirme"},
			Weight:   7,
			Severity: "high",
		},
		{
			Name:     "hopelessness",
			Kind:     KindRisk,
			Keywords: []string{"sin esperanza", "no hay salida", "todo está perdido", "no puedo más", "es inútil"},
			Weight:   6,
			Severity: "medium",
		},
		{
			Name:     "isolation",
			Kind:     KindRisk,
			Keywords: []string{"completamente solo", "nadie me entiende", "todos me abandonan", "aislado"},
			Weight:   4,
			Severity: "medium",
		},
		{
			Name:     "desperation",
			Kind:     KindRisk,
			Keywords: []string{"desesperado", "no aguanto", "es insoportable", "no puedo seguir"},
			Weight:   5,
			Severity: "medium",
		},
		{
			Name:     "support",
			Kind:     KindProtective,
			Keywords: []string{"familia", "amigos", "apoyo", "ayuda", "acompañado"},
			Weight:   1,
		},
		{
			Name:     "coping",
			Kind:     KindProtective,
			Keywords: []string{"respirar", "meditar", "ejercicio", "música", "escribir"},
			Weight:   1,
		},
		{
			Name:     "hope",
			Kind:     KindProtective,
			Keywords: []string{"esperanza", "futuro", "mañana", "mejorar", "cambiar"},
			Weight:   1,
		},
		{
			Name:     "professional",
			Kind:     KindProtective,
			Keywords: []string{"psicólogo", "terapeuta", "doctor", "medicamento", "tratamiento"},
			Weight:   1,
		},
	})
}

// Mood returns the general positive/negative/neutral mood keyword lists.
func Mood() *Lexicon {
	return MustNew("mood", []Category{
		{
			Name:     "positive",
			Kind:     KindPositive,
			Keywords: []string{"feliz", "alegre", "contento", "bien", "genial", "excelente", "optimista", "tranquilo", "relajado"},
			Weight:   1,
		},
		{
			Name:     "negative",
			Kind:     KindRisk,
			Keywords: []string{"triste", "deprimido", "ansiedad", "preocupado", "miedo", "angustia", "mal", "terrible", "desesperado"},
			Weight:   1,
		},
		{
			Name:     "neutral",
			Kind:     KindNeutral,
			Keywords: []string{"normal", "regular", "ok", "igual", "así", "común"},
			Weight:   1,
		},
	})
}

// MoodIndicators returns the six emotional state categories used to pick a
// dominant mood per message.
func MoodIndicators() *Lexicon {
	return MustNew("mood-indicators", []Category{
		{Name: "depression", Kind: KindRisk, Keywords: []string{"triste", "deprimido", "vacío", "sin esperanza", "desesperanzado", "melancólico"}},
		{Name: "anxiety", Kind: KindRisk, Keywords: []string{"ansioso", "nervioso", "preocupado", "estresado", "agobiado", "inquieto"}},
		{Name: "anger", Kind: KindRisk, Keywords: []string{"enojado", "furioso", "irritado", "molesto", "frustrado", "rabioso"}},
		{Name: "joy", Kind: KindPositive, Keywords: []string{"feliz", "alegre", "contento", "eufórico", "animado", "optimista"}},
		{Name: "fear", Kind: KindRisk, Keywords: []string{"miedo", "asustado", "aterrado", "pánico", "temor", "espanto"}},
		{Name: "calm", Kind: KindPositive, Keywords: []string{"tranquilo", "relajado", "sereno", "pacífico", "calmado", "sosegado"}},
	})
}

var presets = map[string]func() *Lexicon{
	"crisis":          Crisis,
	"mood":            Mood,
	"mood-indicators": MoodIndicators,
}

// Preset returns a built-in lexicon by name.
func Preset(name string) (*Lexicon, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown lexicon %q (valid: %v)", name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the built-in lexicons.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
