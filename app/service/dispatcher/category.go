package dispatcher

import "profileqa/app/util/textnorm"

type Category int

const (
	CategoryBinaryFact Category = iota
	CategoryAboutMe
	CategoryListRequest
	CategoryOpenEnded
)

func (c Category) String() string {
	switch c {
	case CategoryBinaryFact:
		return "binary_fact"
	case CategoryAboutMe:
		return "about_me"
	case CategoryListRequest:
		return "list_request"
	case CategoryOpenEnded:
		return "open_ended"
	default:
		return "unknown"
	}
}

// NoInformation is the answer when the profile has nothing to say about the question.
const NoInformation = "Desculpe, não entendi a pergunta ou não tenho essa informação."

type Question struct {
	Raw        string
	Normalized string
}

func NewQuestion(raw string) Question {
	return Question{Raw: raw, Normalized: textnorm.Normalize(raw)}
}

type Answer struct {
	Text      string
	Category  Category
	KBVersion uint64
}

var aboutMePatterns = textnorm.NormalizeAll(
	"fale sobre você",
	"fale um pouco sobre você",
	"fale mais sobre você",
	"me fale sobre você",
	"conte sobre você",
	"conte-me sobre você",
	"me conte sobre você",
	"quem é você",
	"se apresente",
	"apresente-se",
	"tell me about yourself",
	"who are you",
)

var listSignals = textnorm.NormalizeAll(
	"quais são",
	"lista da",
	"lista de",
	"lista dos",
	"lista das",
	"enumerar",
	"enumere",
)
