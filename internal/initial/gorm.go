package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"BotDesk/internal/config"
	adminEntity "BotDesk/internal/modules/admin/domain/entity"
	botEntity "BotDesk/internal/modules/bot/domain/entity"
	caseEntity "BotDesk/internal/modules/casebook/domain/entity"
	knowledgeEntity "BotDesk/internal/modules/knowledge/domain/entity"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormDB 连接 MySQL；时间统一按 UTC 读写
func NewGormDB(conf config.MysqlConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}

// AutoMigrate 如果没有建表，会自动创建对应的表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&adminEntity.AdminUser{},

		&botEntity.Bot{},
		&botEntity.BotSecret{},
		&botEntity.BotConfig{},
		&botEntity.AIPreset{},

		&caseEntity.CaseItem{},
		&caseEntity.StatDaily{},

		&knowledgeEntity.KnowledgeDoc{},
		&knowledgeEntity.KnowledgeChunk{},
	)
}
