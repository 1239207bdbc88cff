package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soktep/khqrpay/internal/core/domain"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"

// adminCheck guards the admin surface with the configured static token.
func adminCheck(adminToken string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			handleAbort(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Split(header, " ")
		if len(words) != 2 || words[0] != authType {
			handleAbort(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}

		if adminToken == "" ||
			subtle.ConstantTimeCompare([]byte(words[1]), []byte(adminToken)) != 1 {
			handleAbort(ctx, domain.ErrUnauthorized)
			return
		}

		ctx.Next()
	}
}
