package controllers

import (
	"audition-management-api/config"
	"audition-management-api/draftcache"
	"audition-management-api/realtime"
	"audition-management-api/services"

	"github.com/gin-gonic/gin"
)

// Review collaboration infrastructure shared by the review, draft and
// event handlers. Wired once at startup from the global DB and Redis
// connections.
var (
	reviewBroker  *realtime.Broker
	reviewDrafts  *draftcache.Store
	reviewStore   *services.GormReviewStore
	reviewManager *services.SessionManager
)

// InitReviewInfra wires the broker, draft cache, review store and
// session manager. Must run after config.InitDB and config.InitRedis.
func InitReviewInfra() {
	reviewBroker = realtime.NewBroker(config.Redis)
	reviewDrafts = draftcache.NewStore(config.Redis, draftcache.DefaultTTL)
	reviewStore = services.NewGormReviewStore(config.DB, reviewBroker)
	reviewManager = services.NewSessionManager(
		reviewStore,
		reviewDrafts,
		reviewBroker,
		reviewStore.LookupReviewerName,
		services.SessionConfig{},
	)
}

// ShutdownReviewInfra releases every open review session.
func ShutdownReviewInfra() {
	if reviewManager != nil {
		reviewManager.CloseAll()
	}
}

func getUserID(c *gin.Context) int {
	userID, _ := c.Get("userID")
	id, _ := userID.(int)
	return id
}

func getRoleID(c *gin.Context) int {
	roleID, _ := c.Get("roleID")
	id, _ := roleID.(int)
	return id
}

func capsForCaller(c *gin.Context) (*services.Capabilities, error) {
	return services.GetCapabilities(getUserID(c))
}
