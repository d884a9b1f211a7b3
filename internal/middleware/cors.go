package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域白名单：精确匹配的来源加上正则匹配的来源（如预览环境域名）。
// 命中的来源原样回写，允许携带凭证；预检请求返回 200。
func CORS(origins, patterns []string) (gin.HandlerFunc, error) {
	exact := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		exact[o] = struct{}{}
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if _, ok := exact[origin]; ok {
				return true
			}
			for _, re := range compiled {
				if re.MatchString(origin) {
					return true
				}
			}
			return false
		},
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:              []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:             []string{"Content-Length"},
		AllowCredentials:          true,
		OptionsResponseStatusCode: http.StatusOK,
		MaxAge:                    12 * time.Hour,
	}), nil
}
