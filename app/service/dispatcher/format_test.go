package dispatcher

import (
	"testing"

	"profileqa/app/config"
	"profileqa/app/service/knowledge"

	"github.com/stretchr/testify/assert"
)

func TestFormatSkills(t *testing.T) {
	schema := config.DefaultSchema()
	entries := []knowledge.Entry{
		knowledge.NewEntry("nome", "Go", "descricao", "serviços backend"),
		knowledge.NewEntry("habilidade", "SQL"),
		knowledge.NewEntry("descricao", "sem nome", "nivel", "x"),
		knowledge.NewEntry("name", "Docker", "description", "containers"),
	}

	assert.Equal(t, "Go\nSQL\nDocker", FormatSkills(entries, schema, false))
	assert.Equal(t, "Go: serviços backend\nSQL\nDocker: containers", FormatSkills(entries, schema, true))
	assert.Equal(t, "", FormatSkills(nil, schema, true))
}

func TestFormatLanguages(t *testing.T) {
	schema := config.DefaultSchema()
	entries := []knowledge.Entry{
		knowledge.NewEntry("idioma", "Português", "nivel", "nativo"),
		knowledge.NewEntry("idioma", "Espanhol", "proficiencia", "básico"),
		knowledge.NewEntry("idioma", "Alemão"),
		knowledge.NewEntry("nivel", "fluente", "certificado", "TOEFL"),
	}

	assert.Equal(t, "Português (nativo)\nEspanhol (básico)\nAlemão", FormatLanguages(entries, schema))
}

func TestResolveList_DescribedSkills(t *testing.T) {
	schema := config.DefaultSchema()
	schema.DescribeSkills = true

	kb := knowledge.NewBuilder().
		Topic("Habilidades_Tecnicas", knowledge.ListValue(
			knowledge.NewEntry("habilidade", "Go", "descricao", "serviços backend"),
		)).
		Build()

	result := ResolveList(NewQuestion("Quais são suas habilidades?"), kb, schema)
	assert.Equal(t, "Go: serviços backend", result)
}

func TestResolveList_Fields(t *testing.T) {
	kb := knowledge.NewBuilder().
		Topic("hobbies", knowledge.FieldsValue(knowledge.NewEntry("esporte", "corrida", "jogo", "xadrez"))).
		Build()

	result := ResolveList(NewQuestion("Lista de hobbies"), kb, config.DefaultSchema())
	assert.Equal(t, "esporte: corrida\njogo: xadrez", result)
}

func TestResolveList_EmptyRendering(t *testing.T) {
	kb := knowledge.NewBuilder().
		Topic("idiomas", knowledge.ListValue()).
		Topic("hobbies", knowledge.TextValue("   ")).
		Build()
	schema := config.DefaultSchema()

	assert.Equal(t, NoInformation, ResolveList(NewQuestion("Quais são seus idiomas?"), kb, schema))
	assert.Equal(t, NoInformation, ResolveList(NewQuestion("Quais são seus hobbies?"), kb, schema))
}
