package model

type ResourceType string

const (
	ResourceVideo ResourceType = "VIDEO"
	ResourcePDF   ResourceType = "PDF"
	ResourceQuiz  ResourceType = "QUIZ"
	ResourceOther ResourceType = "OTHER"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceVideo, ResourcePDF, ResourceQuiz, ResourceOther:
		return true
	}
	return false
}

// Course is a unit of training. Archiving flips IsActive; rows are never deleted.
// swagger:model Course
type Course struct {
	UUIDBase
	Title           string       `gorm:"size:200;not null" json:"title"`
	Category        string       `gorm:"size:100;not null;index" json:"category"`
	SkillLevel      string       `gorm:"size:50;not null" json:"skillLevel"`
	Mandatory       bool         `gorm:"not null;default:false" json:"mandatory"`
	ResourceType    ResourceType `gorm:"size:16;not null" json:"resourceType"`
	ResourceName    *string      `gorm:"size:200" json:"resourceName"`
	DurationMinutes *int         `json:"durationMinutes"`
	URL             *string      `gorm:"column:url;size:500" json:"url"`
	IsActive        bool         `gorm:"not null;default:true;index" json:"isActive"`

	Assignments []CourseAssignment `gorm:"foreignKey:CourseID" json:"assignments,omitempty"`
	Progresses  []CourseProgress   `gorm:"foreignKey:CourseID" json:"progresses,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
