package httpapi

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/unburdy/scheduler-module/internal/config"
)

// NewEngine builds the gin engine with every route under /api/v1 (§6).
func NewEngine(deps *Deps, rl config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RateLimiter(rl.Enabled, rl.Requests, rl.Duration))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	v1.POST("/account", createAccount(deps))

	// Account-admin routes, authenticated via x-api-key (§6).
	admin := v1.Group("/")
	admin.Use(AdminAuth(deps))
	registerCoreRoutes(admin, deps)

	// The same admin-authenticated routes mirrored under /user/..., so
	// an account admin can act as any of its users (§6).
	userMirror := v1.Group("/user")
	userMirror.Use(AdminAuth(deps))
	registerCoreRoutes(userMirror, deps)

	// Public-account routes: origin identification only via
	// nettu-account, no secret checked (§6).
	public := v1.Group("/public")
	public.Use(PublicAccount(deps))
	public.GET("/service/:id/booking-slots", bookingSlots(deps))
	public.POST("/service/:id/reservations", createReservationIntent(deps))

	// End-user bearer routes: the account is identified the same way as
	// the public group (nettu-account), and the bearer JWT is then
	// verified against that account's public_jwt_key (§6).
	me := v1.Group("/me")
	me.Use(PublicAccount(deps))
	me.Use(UserAuth(deps))
	me.GET("/calendar/:id", RequirePolicy("calendar:read"), getCalendar(deps))
	me.GET("/event/:id", RequirePolicy("event:read"), getEvent(deps))
	me.GET("/event/:id/instances", RequirePolicy("event:read"), eventInstances(deps))
	me.GET("/service/:id/booking-slots", RequirePolicy("booking:read"), bookingSlots(deps))
	me.POST("/service/:id/reservations", RequirePolicy("booking:write"), createReservationIntent(deps))

	return r
}

// registerCoreRoutes mounts every account-admin CRUD/query route onto rg.
func registerCoreRoutes(rg *gin.RouterGroup, deps *Deps) {
	rg.GET("/account", getAccount(deps))
	rg.PUT("/account/webhook", setAccountWebhook(deps))
	rg.PUT("/account/public-jwt-key", setAccountPublicJWTKey(deps))

	rg.POST("/user", createUser(deps))
	rg.GET("/user/:id", getUser(deps))
	rg.DELETE("/user/:id", deleteUser(deps))
	rg.GET("/user/meta", findUsersByMetadata(deps))

	rg.POST("/calendar", createCalendar(deps))
	rg.GET("/calendar/:id", getCalendar(deps))
	rg.DELETE("/calendar/:id", deleteCalendar(deps))
	rg.GET("/calendar/meta", findCalendarsByMetadata(deps))
	rg.POST("/calendar/:id/event", createEvent(deps))

	rg.GET("/event/:id", getEvent(deps))
	rg.PUT("/event/:id", updateEvent(deps))
	rg.DELETE("/event/:id", deleteEvent(deps))
	rg.GET("/event/:id/instances", eventInstances(deps))
	rg.GET("/event/meta", findEventsByMetadata(deps))

	rg.POST("/schedule", createSchedule(deps))
	rg.GET("/schedule/:id", getSchedule(deps))
	rg.PUT("/schedule/:id", updateSchedule(deps))
	rg.DELETE("/schedule/:id", deleteSchedule(deps))
	rg.GET("/schedule/meta", findSchedulesByMetadata(deps))

	rg.POST("/service", createService(deps))
	rg.GET("/service/:id", getService(deps))
	rg.DELETE("/service/:id", deleteService(deps))
	rg.POST("/service/:id/users", addServiceUser(deps))
	rg.DELETE("/service/:id/users/:userId", removeServiceUser(deps))
	rg.GET("/service/:id/booking-slots", bookingSlots(deps))
	rg.POST("/service/:id/reservations", createReservationIntent(deps))
	rg.DELETE("/service/:id/reservations", removeReservationIntent(deps))
}
