package routes

import (
	"net/http"

	"restran/auth"
	"restran/bookings"
	"restran/geocode"
	"restran/maps"
	"restran/middleware"
	"restran/models"
	"restran/ratelim"
	"restran/restaurants"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/restaurantpic/*filepath", http.Dir("static/restaurantpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/refresh", ratelim.RateLimit(auth.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddRestaurantRoutes(router *httprouter.Router) {
	// "mine" would collide with the :restaurantid wildcard, hence /api/my
	router.GET("/api/restaurants", restaurants.GetRestaurants)
	router.GET("/api/restaurants/:restaurantid", restaurants.GetRestaurant)
	router.GET("/api/my/restaurants", middleware.RequireRole(models.RoleOwner, restaurants.GetMyRestaurants))

	router.POST("/api/restaurants", ratelim.RateLimit(middleware.RequireRole(models.RoleOwner, restaurants.CreateRestaurant)))
	router.PUT("/api/restaurants/:restaurantid", middleware.RequireRole(models.RoleOwner, restaurants.UpdateRestaurant))
	router.DELETE("/api/restaurants/:restaurantid", middleware.RequireRole(models.RoleOwner, restaurants.DeleteRestaurant))
	router.POST("/api/restaurants/:restaurantid/banner", middleware.RequireRole(models.RoleOwner, restaurants.UploadBanner))
}

func AddBookingRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", ratelim.RateLimit(middleware.RequireRole(models.RoleClient, bookings.CreateBooking)))
	router.GET("/api/my/bookings", middleware.Authenticate(bookings.GetMyBookings))
	router.GET("/api/owner/bookings", middleware.RequireRole(models.RoleOwner, bookings.GetOwnerBookings))
	// no Authenticate wrapper: the handshake carries the JWT as ?token=,
	// which HandleWS validates itself
	router.GET("/ws/bookings", bookings.HandleWS)
	router.GET("/api/bookings/:bookingid", middleware.Authenticate(bookings.GetBooking))
	router.GET("/api/bookings/:bookingid/receipt", middleware.Authenticate(bookings.DownloadReceipt))
	router.PATCH("/api/bookings/:bookingid/status", middleware.RequireRole(models.RoleOwner, bookings.UpdateBookingStatus))
	router.PATCH("/api/bookings/:bookingid/cancel", middleware.RequireRole(models.RoleClient, bookings.CancelBooking))
}

func AddMapRoutes(router *httprouter.Router) {
	router.GET("/api/map/config", maps.GetMapConfig)
	router.GET("/api/map/markers", maps.GetMarkers)
}

func AddGeoRoutes(router *httprouter.Router) {
	router.GET("/api/geocode/reverse", ratelim.RateLimit(middleware.Authenticate(geocode.ReverseHandler)))
}
