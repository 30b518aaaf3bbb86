package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/barberbook/internal/adapters/http/api"
	"github.com/okian/barberbook/internal/adapters/repository"
	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type client struct {
	mux http.Handler
}

func (c client) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func newClient() client {
	hash, err := bcrypt.GenerateFromPassword([]byte("chave-mestra"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	clock := func() time.Time { return now }
	svc := service.New(
		service.WithStore(repository.NewMemoryStore()),
		service.WithClock(clock),
		service.WithBcryptCost(bcrypt.MinCost),
		service.WithManagerPasswordHash(string(hash)),
	)
	mux := http.NewServeMux()
	api.NewServer(svc, api.WithClock(clock), api.WithMaxLimit(10)).Register(context.Background(), mux)
	return client{mux: mux}
}

func signUp(c client, email string) string {
	w := c.do("POST", "/api/auth/signup", "", `{"email":"`+email+`","password":"segredo1","unit":"Centro"}`)
	So(w.Code, ShouldEqual, http.StatusCreated)
	return decode[service.AuthResult](w).Token
}

func TestPublicRoutes(t *testing.T) {
	Convey("Given a registered API", t, func() {
		c := newClient()

		Convey("Then health, metrics and stats answer without a token", func() {
			So(c.do("GET", "/healthz", "", "").Code, ShouldEqual, http.StatusOK)
			So(c.do("GET", "/metrics", "", "").Code, ShouldEqual, http.StatusOK)
			w := c.do("GET", "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](w), ShouldContainKey, "started")
		})

		Convey("Then private routes need a valid bearer token", func() {
			w := c.do("GET", "/api/me/dashboard", "", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(decode[map[string]string](w)["code"], ShouldEqual, "unauthenticated")
			So(c.do("GET", "/api/me/dashboard", "not-a-token", "").Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then unknown routes are not found", func() {
			So(c.do("GET", "/unknown", "", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then sign-up validates and sign-in checks credentials", func() {
			So(c.do("POST", "/api/auth/signup", "", `{"email":"ana@x.com","password":"1"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do("POST", "/api/auth/signup", "", `{"email":`).Code, ShouldEqual, http.StatusBadRequest)
			signUp(c, "ana@x.com")
			So(c.do("POST", "/api/auth/signup", "", `{"email":"ana@x.com","password":"segredo1"}`).Code, ShouldEqual, http.StatusConflict)
			So(c.do("POST", "/api/auth/signin", "", `{"email":"ana@x.com","password":"errada"}`).Code, ShouldEqual, http.StatusUnauthorized)

			w := c.do("POST", "/api/auth/signin", "", `{"email":"ANA@x.com","password":"segredo1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[service.AuthResult](w).Session.Email, ShouldEqual, "ana@x.com")
		})
	})
}

func TestShopFlow(t *testing.T) {
	Convey("Given a barber and a manager session", t, func() {
		c := newClient()
		ana := signUp(c, "ana@x.com")

		So(c.do("GET", "/api/barbers", ana, "").Code, ShouldEqual, http.StatusForbidden)
		So(c.do("POST", "/api/auth/manager", ana, `{"password":"errada"}`).Code, ShouldEqual, http.StatusUnauthorized)
		w := c.do("POST", "/api/auth/manager", ana, `{"password":"chave-mestra"}`)
		So(w.Code, ShouldEqual, http.StatusOK)
		boss := decode[service.AuthResult](w).Token

		w = c.do("POST", "/api/catalog/services", boss, `{"name":"Corte","price":"20"}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		corte := decode[model.CatalogItem](w)
		w = c.do("POST", "/api/products", boss, `{"name":"Pomada","basePrice":"12.30","stock":3}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		pomada := decode[model.Product](w)

		Convey("When the barber records work", func() {
			w := c.do("POST", "/api/entries/services", ana, `{"serviceId":"`+corte.ID+`","clientName":"João"}`, api.IdempotencyHeader, "k-1")
			So(w.Code, ShouldEqual, http.StatusCreated)
			first := decode[model.ProductionEvent](w)

			w = c.do("POST", "/api/entries/services", ana, `{"serviceId":"`+corte.ID+`","clientName":"João"}`, api.IdempotencyHeader, "k-1")
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(decode[model.ProductionEvent](w).ID, ShouldEqual, first.ID)

			w = c.do("POST", "/api/entries/sales", ana, `{"productId":"`+pomada.ID+`","quantity":2}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			sale := decode[model.ProductionEvent](w)

			Convey("Then the dashboard shows today's totals", func() {
				w := c.do("GET", "/api/me/dashboard", ana, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				d := decode[service.BarberDashboard](w)
				So(d.Today.Count, ShouldEqual, 2)
				So(d.Today.Revenue.StringFixed(2), ShouldEqual, "44.60")
				So(d.TotalCommission.StringFixed(2), ShouldEqual, "12.00")
				So(sale.VATAmount.StringFixed(2), ShouldEqual, "4.60")
			})

			Convey("Then the leaderboard ranks the barber", func() {
				w := c.do("GET", "/api/leaderboard?month=2024-03", ana, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				rows := decode[[]aggregate.Standing](w)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Revenue.StringFixed(2), ShouldEqual, "44.60")

				So(c.do("GET", "/api/leaderboard/ana@x.com", ana, "").Code, ShouldEqual, http.StatusOK)
				So(c.do("GET", "/api/leaderboard/rui@x.com", ana, "").Code, ShouldEqual, http.StatusNotFound)
				So(c.do("GET", "/api/leaderboard?month=2024-02", ana, "").Body.String(), ShouldStartWith, "[]")
				So(c.do("GET", "/api/leaderboard?month=2024-13", ana, "").Code, ShouldEqual, http.StatusBadRequest)
				So(c.do("GET", "/api/leaderboard?limit=11", ana, "").Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then stock runs out", func() {
				w := c.do("POST", "/api/entries/sales", ana, `{"productId":"`+pomada.ID+`","quantity":2}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[map[string]string](w)["code"], ShouldEqual, "out_of_stock")
			})

			Convey("Then the manager sees the overview and exports a report", func() {
				w := c.do("GET", "/api/manager/overview", boss, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				o := decode[service.ManagerOverview](w)
				So(o.Month, ShouldEqual, "2024-03")
				So(o.LowStockCount, ShouldEqual, 1)

				So(c.do("GET", "/api/manager/overview", ana, "").Code, ShouldEqual, http.StatusForbidden)

				w = c.do("GET", "/api/manager/report?sections=production,barbers&month=2024-03", boss, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "relatorio-2024-03.pdf")
				So(w.Body.String(), ShouldStartWith, "%PDF-")

				So(c.do("GET", "/api/manager/report?sections=payroll", boss, "").Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then the owner deletes an entry once", func() {
				So(c.do("DELETE", "/api/entries/"+first.ID, ana, "").Code, ShouldEqual, http.StatusNoContent)
				So(c.do("DELETE", "/api/entries/"+first.ID, ana, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When entries are malformed", func() {
			So(c.do("POST", "/api/entries/services", ana, `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do("POST", "/api/entries/services", ana, `{"serviceId":"x","bogus":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do("POST", "/api/entries/services", ana, `{"serviceId":"`+corte.ID+`","date":"ontem"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do("POST", "/api/entries/services", ana, `{"serviceId":"ghost"}`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the manager changes rates", func() {
			w := c.do("PUT", "/api/rates", boss, `{"servicePercent":"50"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[aggregate.Rates](w).ServicePercent.String(), ShouldEqual, "50")
			So(c.do("PUT", "/api/rates", boss, `{"servicePercent":"150"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do("PUT", "/api/rates", ana, `{"servicePercent":"10"}`).Code, ShouldEqual, http.StatusForbidden)
			So(decode[aggregate.Rates](c.do("GET", "/api/rates", ana, "")).ServicePercent.String(), ShouldEqual, "50")
		})

		Convey("When the catalogs are managed", func() {
			So(c.do("GET", "/api/catalog/haircuts", ana, "").Code, ShouldEqual, http.StatusNotFound)
			w := c.do("GET", "/api/catalog/services", ana, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]model.CatalogItem](w)), ShouldEqual, 1)
			So(c.do("DELETE", "/api/catalog/services/"+corte.ID, ana, "").Code, ShouldEqual, http.StatusForbidden)
			So(c.do("DELETE", "/api/catalog/services/"+corte.ID, boss, "").Code, ShouldEqual, http.StatusNoContent)

			w = c.do("PATCH", "/api/products/"+pomada.ID, boss, `{"stock":40}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Product](w).Stock, ShouldEqual, 40)
			So(c.do("DELETE", "/api/products/"+pomada.ID, boss, "").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("When profiles are edited", func() {
			w := c.do("PATCH", "/api/me/profile", ana, `{"name":"Ana Silva"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Barber](w).Name, ShouldEqual, "Ana Silva")

			w = c.do("GET", "/api/me/profile", ana, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[service.BarberProfile](w).Summary.Month, ShouldEqual, "2024-03")

			w = c.do("POST", "/api/barbers", boss, `{"email":"rui@x.com","name":"Rui"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			rui := decode[model.Barber](w)
			w = c.do("PATCH", "/api/barbers/"+rui.ID, boss, `{"balance":"12.5"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Barber](w).Balance.StringFixed(2), ShouldEqual, "12.50")

			w = c.do("GET", "/api/barbers", boss, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]model.Barber](w)), ShouldEqual, 2)
		})
	})
}
