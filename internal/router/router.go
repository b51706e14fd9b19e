package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/netprime/streaming-catalog/internal/handler"    // import the handlers that implement business logic
	"github.com/netprime/streaming-catalog/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/netprime/streaming-catalog/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", handler.Health)
}

// RegisterAuth registers the authentication routes and applies the
// necessary middleware.  Register and login are open (behind the rate
// limiter when one is supplied); logout and me require a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, sessions *repository.SessionRepo, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := middleware.JWTAuth(jwtSecret, sessions)
	g.GET("/logout", a.Logout, auth)
	g.GET("/me", a.Me, auth)
}

// RegisterCatalog registers movie and genre routes.  Reads are public and
// sit behind the response cache when one is supplied; mutations require
// an authenticated admin.
func RegisterCatalog(e *echo.Echo, m *handler.MovieHandler, gh *handler.GenreHandler, jwtSecret string, sessions *repository.SessionRepo, cache echo.MiddlewareFunc) {
	movies := e.Group("/api/movies")
	genres := e.Group("/api/genres")
	if cache != nil {
		movies.Use(cache)
		genres.Use(cache)
	}

	// Static paths before /:id so "featured" is not parsed as an id.
	movies.GET("", m.List)
	movies.GET("/featured", m.Featured)
	movies.GET("/trending", m.Trending)
	movies.GET("/popular", m.Popular)
	movies.GET("/:id", m.Get)

	genres.GET("", gh.List)
	genres.GET("/:id", gh.Get)
	genres.GET("/search/:genreName", gh.MoviesByGenre)

	admin := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret, sessions),
		middleware.RequireRole("ADMIN"),
	}
	movies.POST("", m.Create, admin...)
	movies.PUT("/:id", m.Update, admin...)
	movies.DELETE("/:id", m.Delete, admin...)

	genres.POST("", gh.Create, admin...)
	genres.PUT("/:id", gh.Update, admin...)
	genres.DELETE("/:id", gh.Delete, admin...)
}

// RegisterUser registers the authenticated user routes: profile, watchlist,
// watch-history and favorite genres.  Every route acts on the user
// resolved from the bearer token.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, jwtSecret string, sessions *repository.SessionRepo) {
	g := e.Group("/api/users")
	g.Use(middleware.JWTAuth(jwtSecret, sessions))

	g.GET("/profile", u.GetProfile)
	g.PUT("/profile", u.UpdateProfile)
	g.POST("/watchlist", u.AddToWatchlist)
	g.DELETE("/watchlist/:movieId", u.RemoveFromWatchlist)
	g.GET("/watchlist", u.GetWatchlist)
	g.POST("/watch-history", u.AddToWatchHistory)
	g.GET("/watch-history", u.GetWatchHistory)
	g.PUT("/favorite-genres", u.SetFavoriteGenres)
}
