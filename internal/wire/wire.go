package wire

import (
	"Applyhub/internal/api"
	"Applyhub/internal/api/config"
	"Applyhub/internal/api/handler"
	"Applyhub/internal/job"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/cron"
	"Applyhub/internal/pkg/kafka"
	"Applyhub/internal/pkg/keylock"
	"Applyhub/internal/pkg/mongo"
	"Applyhub/internal/repository"
	"Applyhub/internal/service"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // 未启用 Kafka 时为 nil
}

// BuildApplication mongoDatabase 可为 nil，此时系统通知不落库
func BuildApplication(db *gorm.DB, mongoDatabase *mongoDB.Database, cfg *config.Config) (*ApplicationContainer, error) {
	applicationRepo := repository.NewApplicationRepo(db)
	opportunityRepo := repository.NewOpportunityRepo(db)
	contentRepo := repository.NewContentRepo(db)
	contentMetricRepo := repository.NewContentMetricRepo(db)
	interactionRepo := repository.NewInteractionRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)

	var sysBoxRepo mongo.SysBoxRepo
	if mongoDatabase != nil {
		sysBoxRepo = mongo.NewSysBoxRepo(mongoDatabase)
	}

	locker, err := newLocker(cfg.Interaction)
	if err != nil {
		return nil, err
	}

	analyticsService := service.NewAnalyticsService(
		contentRepo,
		contentMetricRepo,
		applicationRepo,
		userFollowRepo,
		time.Duration(cfg.Analytics.CacheTTL)*time.Second,
		cfg.Analytics.TopContentLimit,
	)
	sysBoxService := service.NewSysBoxService(sysBoxRepo)
	applicationService := service.NewApplicationService(applicationRepo, opportunityRepo, sysBoxService, analyticsService)
	interactionService := service.NewInteractionService(interactionRepo, contentRepo, locker, analyticsService)

	contentMetricJob := job.NewContentMetricJob(interactionRepo, contentRepo, analyticsService)

	handlers := &api.HandlersGroup{
		ApplicationHandler: handler.NewApplicationHandler(applicationService),
		InteractionHandler: handler.NewInteractionHandler(interactionService),
		AnalyticsHandler:   handler.NewAnalyticsHandler(analyticsService),
		SysBoxHandler:      handler.NewSysBoxHandler(sysBoxService),
		JobHandler:         handler.NewJobHandler(contentMetricJob),
	}

	router := api.SetupRouter(handlers)

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		kafkaMgr, err = kafka.NewConsumerManager(cfg, contentRepo, contentMetricRepo, analyticsService)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cron.NewCronManager(cfg.Cron.ContentMetricSpec, contentMetricJob),
		KafkaManager: kafkaMgr,
	}, nil
}

func newLocker(cfg config.InteractionConfig) (keylock.Locker, error) {
	switch cfg.LockMode {
	case "", consts.LockModeLocal:
		return keylock.NewLocalLocker(), nil
	case consts.LockModeRedis:
		return keylock.NewRedisLocker(
			consts.InteractionLock,
			time.Duration(cfg.LockTTL)*time.Second,
			time.Duration(cfg.LockTimeout)*time.Millisecond,
		), nil
	default:
		return nil, fmt.Errorf("unsupported interaction lock mode %q", cfg.LockMode)
	}
}
