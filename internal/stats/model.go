package stats

// SingletonID 是计数行的固定主键
const SingletonID = 1

// SiteStats 定义了站点计数器在数据库中的唯一一行
// 表名和列名与前端约定的JSON字段保持一致
type SiteStats struct {
	// ID 固定为 SingletonID
	ID int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`

	// SiteViews 是站点总浏览次数
	SiteViews int64 `gorm:"column:site_views;not null;default:0" json:"site_views"`

	// LoveCount 是访客点“喜欢”的总次数
	LoveCount int64 `gorm:"column:love_count;not null;default:0" json:"love_count"`
}

// TableName 指定表名，避免GORM自动复数化
func (SiteStats) TableName() string {
	return "site_stats"
}
