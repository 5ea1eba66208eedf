package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlhuang/tastemap-backend/config"
	"github.com/mlhuang/tastemap-backend/internal/app/controller"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
)

type Router struct {
	authController       *controller.AuthController
	restaurantController *controller.RestaurantController
	favoriteController   *controller.FavoriteController
	commentController    *controller.CommentController
	userController       *controller.UserController
	adminController      *controller.AdminController
	categoryController   *controller.CategoryController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	restaurantController *controller.RestaurantController,
	favoriteController *controller.FavoriteController,
	commentController *controller.CommentController,
	userController *controller.UserController,
	adminController *controller.AdminController,
	categoryController *controller.CategoryController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		restaurantController: restaurantController,
		favoriteController:   favoriteController,
		commentController:    commentController,
		userController:       userController,
		adminController:      adminController,
		categoryController:   categoryController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TasteMap API is running",
		})
	})

	// Serve uploaded images
	router.Static(r.config.Upload.PublicPath, r.config.Upload.Dir)

	auth := r.authMiddleware.Authenticate()
	admin := r.authMiddleware.RequireAdmin()

	// Public auth pages
	router.GET("/signup", r.authController.GetSignUpPage)
	router.POST("/signup", r.authController.SignUp)
	router.GET("/signin", r.authController.GetSignInPage)
	router.POST("/signin", r.authController.SignIn)
	router.GET("/logout", auth, r.authController.Logout)

	// Front page lands on the restaurant listing
	router.GET("/", auth, func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/restaurants")
	})

	restaurants := router.Group("/restaurants", auth)
	{
		restaurants.GET("", r.restaurantController.GetRestaurants)
		restaurants.GET("/feeds", r.restaurantController.GetFeeds)
		restaurants.GET("/top", r.restaurantController.GetTopRestaurants)
		restaurants.GET("/:id", r.restaurantController.GetRestaurant)
		restaurants.GET("/:id/dashboard", r.restaurantController.GetDashboard)
	}

	router.POST("/favorite/:restaurantId", auth, r.favoriteController.AddFavorite)
	router.DELETE("/favorite/:restaurantId", auth, r.favoriteController.RemoveFavorite)
	router.POST("/like/:restaurantId", auth, r.favoriteController.AddLike)
	router.DELETE("/like/:restaurantId", auth, r.favoriteController.RemoveLike)

	router.POST("/comments", auth, r.commentController.CreateComment)
	router.DELETE("/comments/:id", auth, admin, r.commentController.DeleteComment)

	router.GET("/users/:id", auth, r.userController.GetProfile)
	router.PUT("/users/:id", auth, r.userController.UpdateProfile)

	adminGroup := router.Group("/admin", auth, admin)
	{
		adminGroup.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/admin/restaurants")
		})

		adminGroup.GET("/restaurants", r.adminController.GetRestaurants)
		adminGroup.POST("/restaurants", r.adminController.CreateRestaurant)
		adminGroup.GET("/restaurants/export", r.adminController.ExportRestaurants)
		adminGroup.GET("/restaurants/:id", r.adminController.GetRestaurant)
		adminGroup.PUT("/restaurants/:id", r.adminController.UpdateRestaurant)
		adminGroup.DELETE("/restaurants/:id", r.adminController.DeleteRestaurant)

		adminGroup.GET("/users", r.adminController.GetUsers)
		adminGroup.PUT("/users/:id/toggleAdmin", r.adminController.ToggleAdmin)

		adminGroup.GET("/categories", r.categoryController.GetCategories)
		adminGroup.POST("/categories", r.categoryController.CreateCategory)
		adminGroup.GET("/categories/:id", r.categoryController.GetCategory)
		adminGroup.PUT("/categories/:id", r.categoryController.UpdateCategory)
		adminGroup.DELETE("/categories/:id", r.categoryController.DeleteCategory)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
