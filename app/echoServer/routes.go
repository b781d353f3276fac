package echoServer

import (
	"carrental/app/echoServer/controller/auth"
	"carrental/app/echoServer/controller/car"
	"carrental/app/echoServer/controller/rental"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Car       *car.Controller
	Rental    *rental.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	jwtMW := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	})

	// Public
	pub := e.Group("/api")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/cars", c.Car.List)
	pub.GET("/cars/:id", c.Car.Detail)

	// Authenticated
	priv := e.Group("/api", jwtMW, CurrentUser())
	priv.GET("/auth/profile", c.Auth.Profile)
	priv.GET("/cars/available", c.Car.ListAvailable)
	priv.POST("/rentals", c.Rental.Create)
	priv.GET("/rentals", c.Rental.My)
	priv.GET("/rentals/:id", c.Rental.Detail)
	priv.PUT("/rentals/:id/cancel", c.Rental.Cancel)

	// Admin
	adm := e.Group("/api", jwtMW, CurrentUser(), RequireAdmin())
	adm.POST("/cars", c.Car.Create)
	adm.PUT("/cars/:id", c.Car.Update)
	adm.DELETE("/cars/:id", c.Car.Delete)
	adm.GET("/rentals/admin/all", c.Rental.AdminList)
	adm.PUT("/rentals/admin/:id/status", c.Rental.AdminStatus)
}
