package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"zhipan/pkg/ratelimiter"
)

// AuthMiddleware 创建一个 Gin 中间件，用于验证 JWT 并把用户 ID 写入上下文。
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			failMsg(c, http.StatusUnauthorized, "请求未包含授权标头")
			c.Abort()
			return
		}

		// 我们期望的格式是 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			failMsg(c, http.StatusUnauthorized, "授权标头格式不正确")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("非预期的签名方法")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			failMsg(c, http.StatusUnauthorized, "无效的 token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			failMsg(c, http.StatusUnauthorized, "无效的 token")
			c.Abort()
			return
		}

		// JWT 解析数字时默认为 float64
		sub, ok := claims["sub"].(float64)
		if !ok {
			failMsg(c, http.StatusUnauthorized, "无效的 token claims")
			c.Abort()
			return
		}
		c.Set("userID", uint(sub))

		c.Next()
	}
}

// RateLimitMiddleware 在限流器拒绝时返回 429。
func RateLimitMiddleware(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			failMsg(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID 读取 AuthMiddleware 写入的用户 ID。
func currentUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
