package model

// Staff is an entry of the staff directory.
type Staff struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:128"`
}

// TableName keeps the directory table singular.
func (Staff) TableName() string {
	return "staff"
}
