package models

import "time"

type ExportJob struct {
	JobID     string     `gorm:"column:job_id;primaryKey;size:36" json:"job_id"`
	FormType  string     `gorm:"size:20" json:"form_type,omitempty"`
	Format    string     `gorm:"size:10" json:"format"`
	RangeFrom *time.Time `json:"range_from,omitempty"`
	RangeTo   *time.Time `json:"range_to,omitempty"`
	Status    string     `gorm:"size:20;default:'queued'" json:"status"`
	FilePath  *string    `gorm:"type:text" json:"file_path,omitempty"`
	ErrorMsg  *string    `gorm:"type:text" json:"error_msg,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ExportJob) TableName() string {
	return "export_jobs"
}
