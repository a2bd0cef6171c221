// @title           mediashare API
// @version         1.0
// @description     Share images and videos, comment on and like them. Authenticate with the token returned by /auth/login.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your token.
package api
