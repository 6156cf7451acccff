package models

// ArticleModel is a text document uploaded for summary practice.
// Articles are immutable once created and owned by the uploading user.
type ArticleModel struct {
	Base
	Title       string `json:"title"        gorm:"not null"`
	Content     string `json:"content"      gorm:"type:longtext;not null"`
	UploaderID  string `json:"uploader_id"  gorm:"index;not null"`
	IsCommunity bool   `json:"is_community" gorm:"default:false;index"`
}

func (ArticleModel) TableName() string { return "articles" }
