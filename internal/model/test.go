package model

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	FillBlank      QuestionType = "fill_blank"
)

// Test belongs 1:1 to a content item of type "test".
// swagger:model Test
type Test struct {
	BaseModel
	ContentItemID      uint    `gorm:"uniqueIndex;not null" json:"contentItemId"`
	Title              string  `gorm:"size:200" json:"title"`
	PassingScore       float64 `gorm:"default:0.6" json:"passingScore"` // fraction 0..1, inclusive threshold
	MaxAttempts        *int    `json:"maxAttempts"`                     // nil = unlimited
	TimeLimit          *int    `json:"timeLimit"`                       // minutes
	ShowCorrectAnswers bool    `gorm:"default:false" json:"showCorrectAnswers"`
	RandomizeQuestions bool    `gorm:"default:false" json:"randomizeQuestions"`
	RandomizeOptions   bool    `gorm:"default:false" json:"randomizeOptions"`

	Questions []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// TotalPoints sums every question's points, answered or not.
func (t *Test) TotalPoints() float64 {
	var total float64
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

// swagger:model Question
type Question struct {
	BaseModel
	TestID uint         `gorm:"index;not null" json:"testId"`
	Type   QuestionType `gorm:"size:20;not null" json:"type"`
	Text   string       `gorm:"type:text;not null" json:"text"`
	Points float64      `gorm:"default:1" json:"points"`
	Order  int          `gorm:"column:question_order" json:"order"`
	// CorrectAnswer holds the expected answer for true_false ("true"/"false"),
	// short_answer and fill_blank questions; choice types use option flags.
	CorrectAnswer string `gorm:"size:500" json:"-"`
	Explanation   string `gorm:"type:text" json:"explanation,omitempty"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIndices returns the positions of options flagged correct,
// in option order.
func (q *Question) CorrectOptionIndices() []int {
	var idx []int
	for i, o := range q.Options {
		if o.Correct {
			idx = append(idx, i)
		}
	}
	return idx
}

type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:500;not null" json:"text"`
	Correct    bool   `gorm:"default:false" json:"-"`
	Order      int    `gorm:"column:option_order" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
