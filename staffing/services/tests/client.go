package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sanacare/staffing/services"
	"strings"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
	login    *loginInfo
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Login(email, password string) *httpTestRequest {
	r.login = &loginInfo{Email: email, Password: password}
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	if r.login != nil {
		req.SetBasicAuth(r.login.Email, r.login.Password)
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

var ErrUnauthorized = errors.New("unauthorized")

func isStatus(err error, code int) bool {
	return err != nil && strings.Contains(err.Error(), fmt.Sprintf("returned status %d", code))
}

type client struct {
	api       chi.Router
	authToken string
	userId    string
}

func (c *client) Get(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "GET", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Post(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "POST", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Patch(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "PATCH", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

type loginInfo struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *client) signup(name, role string) (loginInfo, error) {
	body := map[string]string{
		"first_name": name,
		"last_name":  "Test",
		"email":      name + "@mail.com",
		"password":   name + "_password",
		"role":       role,
	}

	var res map[string]string
	err := c.Post("/auth/signup").Json(body).Do(&res)
	if err != nil {
		return loginInfo{}, err
	}
	c.userId = res["user_id"]

	return loginInfo{Email: body["email"], Password: body["password"]}, nil
}

func (c *client) login(login loginInfo) error {
	var res map[string]string
	err := c.Get("/auth/login").Login(login.Email, login.Password).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res["access_token"]
	c.userId = res["user_id"]

	return nil
}

func (c *client) me() (services.UserInfo, error) {
	var res services.UserInfo
	err := c.Get("/auth/me").Do(&res)
	return res, err
}

func (c *client) listUsers() ([]services.UserInfo, error) {
	var res []services.UserInfo
	err := c.Get("/users/list").Do(&res)
	return res, err
}

func (c *client) userInfo(userId string) (services.UserInfo, error) {
	var res services.UserInfo
	err := c.Get(fmt.Sprintf("/users/%v", userId)).Do(&res)
	return res, err
}

func (c *client) updateProfile(userId string, fields map[string]string) error {
	return c.Patch(fmt.Sprintf("/users/%v", userId)).Json(fields).Do(nil)
}

func (c *client) addUser(name, role string) (loginInfo, error) {
	body := map[string]string{
		"first_name": name,
		"last_name":  "Test",
		"email":      name + "@mail.com",
		"password":   name + "_password",
		"role":       role,
	}

	err := c.Post("/users/create").Json(body).Do(nil)
	if err != nil {
		return loginInfo{}, err
	}

	return loginInfo{Email: body["email"], Password: body["password"]}, nil
}

func (c *client) setUserStatus(userId, status string) error {
	return c.Patch(fmt.Sprintf("/users/%v/status", userId)).Json(map[string]string{"status": status}).Do(nil)
}

func (c *client) createInstitution(name string) (services.InstitutionInfo, error) {
	body := map[string]string{"name": name, "address": "1 rue de la Paix", "phone": "0102030405"}

	var res services.InstitutionInfo
	err := c.Post("/institutions/").Json(body).Do(&res)
	return res, err
}

func (c *client) listInstitutions() ([]services.InstitutionInfo, error) {
	var res []services.InstitutionInfo
	err := c.Get("/institutions/").Do(&res)
	return res, err
}

func (c *client) createSchedule(institutionId, date, start, end string) (services.ScheduleInfo, error) {
	body := map[string]string{
		"institution_id": institutionId,
		"date":           date,
		"start_time":     start,
		"end_time":       end,
	}

	var res services.ScheduleInfo
	err := c.Post("/schedules/").Json(body).Do(&res)
	return res, err
}

func (c *client) listSchedules() ([]services.ScheduleInfo, error) {
	var res []services.ScheduleInfo
	err := c.Get("/schedules/").Do(&res)
	return res, err
}

func (c *client) updateScheduleStatus(scheduleId, status string) error {
	return c.Patch(fmt.Sprintf("/schedules/%v/status", scheduleId)).Json(map[string]string{"status": status}).Do(nil)
}

func (c *client) createShift(institutionId, date string, hours, rate, travel float64) (services.ShiftInfo, error) {
	body := map[string]interface{}{
		"institution_id": institutionId,
		"date":           date,
		"hours":          hours,
		"hourly_rate":    rate,
		"travel_cost":    travel,
	}

	var res services.ShiftInfo
	err := c.Post("/shifts/").Json(body).Do(&res)
	return res, err
}

func (c *client) listShifts() ([]services.ShiftInfo, error) {
	var res []services.ShiftInfo
	err := c.Get("/shifts/").Do(&res)
	return res, err
}

func (c *client) validateShift(shiftId string) error {
	return c.Patch(fmt.Sprintf("/shifts/%v/status", shiftId)).Json(map[string]string{"status": "validated"}).Do(nil)
}

func (c *client) createExchange(shiftId, toUserId string) (services.ExchangeInfo, error) {
	body := map[string]string{"shift_id": shiftId, "to_user_id": toUserId}

	var res services.ExchangeInfo
	err := c.Post("/exchanges/").Json(body).Do(&res)
	return res, err
}

func (c *client) listExchanges() ([]services.ExchangeInfo, error) {
	var res []services.ExchangeInfo
	err := c.Get("/exchanges/").Do(&res)
	return res, err
}

func (c *client) resolveExchange(exchangeId, status string) error {
	return c.Patch(fmt.Sprintf("/exchanges/%v/status", exchangeId)).Json(map[string]string{"status": status}).Do(nil)
}

func (c *client) generatePayslip(userId, period string) (services.PayslipInfo, error) {
	var res services.PayslipInfo
	err := c.Post(fmt.Sprintf("/payslips/generate/%v?period=%v", userId, period)).Do(&res)
	return res, err
}

func (c *client) listPayslips() ([]services.PayslipInfo, error) {
	var res []services.PayslipInfo
	err := c.Get("/payslips/").Do(&res)
	return res, err
}

func (c *client) sendMessage(recipientId, content string) (services.MessageInfo, error) {
	body := map[string]string{"recipient_id": recipientId, "content": content}

	var res services.MessageInfo
	err := c.Post("/messages/").Json(body).Do(&res)
	return res, err
}

func (c *client) listMessages() ([]services.MessageInfo, error) {
	var res []services.MessageInfo
	err := c.Get("/messages/").Do(&res)
	return res, err
}

func (c *client) listConversation(otherUserId string) ([]services.MessageInfo, error) {
	var res []services.MessageInfo
	err := c.Get(fmt.Sprintf("/messages/?other_user_id=%v", otherUserId)).Do(&res)
	return res, err
}

func (c *client) markMessageRead(messageId string) error {
	return c.Patch(fmt.Sprintf("/messages/%v/read", messageId)).Do(nil)
}

func (c *client) listNotifications() ([]map[string]interface{}, error) {
	var res []map[string]interface{}
	err := c.Get("/notifications/").Do(&res)
	return res, err
}

func (c *client) markNotificationRead(notificationId string) error {
	return c.Patch(fmt.Sprintf("/notifications/%v/read", notificationId)).Do(nil)
}

func (c *client) markAllNotificationsRead() error {
	return c.Patch("/notifications/read-all").Do(nil)
}

func (c *client) adminStats() (services.AdminStats, error) {
	var res services.AdminStats
	err := c.Get("/dashboard/stats").Do(&res)
	return res, err
}

func (c *client) caregiverStats() (services.CaregiverStats, error) {
	var res services.CaregiverStats
	err := c.Get("/dashboard/stats").Do(&res)
	return res, err
}
