package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

func CreateJWTToken(operatorID string, operatorName string, jwtSecretKey string) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["operatorID"] = operatorID
	claims["name"] = operatorName
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecretKey))
}

func ExtractTokenOperator(c echo.Context) (string, string) {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || !user.Valid {
		return "", ""
	}

	claims, ok := user.Claims.(jwt.MapClaims)
	if !ok {
		return "", ""
	}

	operatorID, _ := claims["operatorID"].(string)
	name, _ := claims["name"].(string)
	return operatorID, name
}
