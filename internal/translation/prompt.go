package translation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const contentLimit = 3000

const systemPrompt = "Eres un asistente que SIEMPRE responde únicamente con un objeto JSON válido. " +
	"Nunca uses markdown ni añadas explicaciones fuera del JSON."

var anyTag = regexp.MustCompile(`<[^>]*>`)

// ClipContent strips markup from content and bounds it to 3000 characters.
// Without content the description is used as is.
func ClipContent(content, description string) string {
	if content == "" {
		return description
	}

	text := strings.Join(strings.Fields(anyTag.ReplaceAllString(content, " ")), " ")
	if utf8.RuneCountInString(text) > contentLimit {
		text = string([]rune(text)[:contentLimit])
	}

	return text
}

// Prompt builds the user message sent to every backend.
func Prompt(title, description, content string) string {
	return fmt.Sprintf(`Eres un redactor experto en League of Legends que escribe para LomiGG.

Título: %s
Descripción: %s
Contenido completo: %s

INSTRUCCIONES:
- Si hay listas de campeones, skins, objetos o precios, inclúyelas TODAS sin resumirlas
- Mantén fechas, números y precios exactos
- Usa \n\n para separar párrafos y \n• para viñetas
- Entre 300 y 400 palabras en español

CRÍTICO: responde ÚNICAMENTE con JSON válido, sin markdown y sin texto adicional.

JSON:
{
  "title_es": "...",
  "description_es": "...",
  "summary_es": "resumen con formato, usa \n para saltos de línea"
}`, title, description, content)
}
