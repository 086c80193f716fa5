package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chatdash.app/api/internal/http/handler"
	"chatdash.app/api/internal/http/middleware"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/service"
	"chatdash.app/api/internal/source"
)

func jsonRequest(method, target string, body any) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

var _ = Describe("AuthHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAuthService
		sess   *model.Session
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockAuthService{}
		sess = &model.Session{
			ID:        "sess-1",
			Username:  "ana",
			Token:     "secret-token",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		h := handler.NewAuthHandler(svc, false)
		router.POST("/auth/login", h.Login)
		router.POST("/auth/logout", h.Logout)
		router.GET("/auth/me", middleware.RequireSession(svc), h.Me)
	})

	Describe("Login", func() {
		It("sets the session cookie and never returns the token", func() {
			svc.loginFn = func(_ context.Context, username, password string) (*model.Session, error) {
				Expect(username).To(Equal("ana"))
				Expect(password).To(Equal("pw"))
				return sess, nil
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "ana", "password": "pw"}))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).NotTo(ContainSubstring("secret-token"))
			resp := decode(w)
			Expect(resp["sessionId"]).To(Equal("sess-1"))
			Expect(resp["username"]).To(Equal("ana"))

			cookies := w.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(middleware.SessionCookieName))
			Expect(cookies[0].Value).To(Equal("sess-1"))
			Expect(cookies[0].HttpOnly).To(BeTrue())
		})

		It("returns 400 when the password is missing", func() {
			w := httptest.NewRecorder()

			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "ana"}))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 401 with the upstream message on rejected credentials", func() {
			svc.loginFn = func(context.Context, string, string) (*model.Session, error) {
				upstream := &source.Error{StatusCode: http.StatusBadRequest, Message: "No puede iniciar sesión con las credenciales proporcionadas."}
				return nil, fmt.Errorf("%w: %w", service.ErrInvalidCredentials, upstream)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "ana", "password": "bad"}))

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decode(w)["error"]).To(Equal("No puede iniciar sesión con las credenciales proporcionadas."))
		})

		It("returns 502 when the upstream is down", func() {
			svc.loginFn = func(context.Context, string, string) (*model.Session, error) {
				return nil, fmt.Errorf("authenticating upstream: %w", &source.Error{StatusCode: http.StatusBadGateway})
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "ana", "password": "pw"}))

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(w)["error"]).To(Equal("Error al iniciar sesión"))
		})
	})

	Describe("Me", func() {
		It("resolves the session from the header", func() {
			svc.currentFn = func(_ context.Context, id string) (*model.Session, error) {
				Expect(id).To(Equal("sess-1"))
				return sess, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set(middleware.SessionIDHeader, "sess-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["username"]).To(Equal("ana"))
			Expect(resp).NotTo(HaveKey("sessionId"))
		})

		It("adds the upstream profile", func() {
			svc.currentFn = func(context.Context, string) (*model.Session, error) {
				return sess, nil
			}
			svc.profileFn = func(_ context.Context, got *model.Session) (*model.User, error) {
				Expect(got).To(BeIdenticalTo(sess))
				return &model.User{ID: 7, Username: "ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Rojas"}, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set(middleware.SessionIDHeader, "sess-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			user, ok := decode(w)["user"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(user["name"]).To(Equal("Ana Rojas"))
			Expect(user["email"]).To(Equal("ana@example.com"))
		})

		It("still answers when the profile lookup fails", func() {
			svc.currentFn = func(context.Context, string) (*model.Session, error) {
				return sess, nil
			}
			svc.profileFn = func(context.Context, *model.Session) (*model.User, error) {
				return nil, &source.Error{StatusCode: http.StatusBadGateway, Message: "caído"}
			}
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set(middleware.SessionIDHeader, "sess-1")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["username"]).To(Equal("ana"))
			Expect(resp).NotTo(HaveKey("user"))
		})

		It("prefers the cookie over the header", func() {
			var seen string
			svc.currentFn = func(_ context.Context, id string) (*model.Session, error) {
				seen = id
				return sess, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "from-cookie"})
			req.Header.Set(middleware.SessionIDHeader, "from-header")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen).To(Equal("from-cookie"))
		})

		It("returns 401 without a session", func() {
			w := httptest.NewRecorder()

			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 401 for an expired session", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set(middleware.SessionIDHeader, "gone")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decode(w)["error"]).To(Equal("session expired"))
		})
	})

	It("logs out and clears the cookie", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.loggedOut).To(Equal([]string{"sess-1"}))
		cookies := w.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].MaxAge).To(BeNumerically("<", 0))
	})
})
