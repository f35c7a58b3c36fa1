// Package client calls the study API over HTTP and mirrors progress and
// comments locally with optimistic updates.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/arnold/studytrack-api/internal/models"
)

// Error is a failed call as reported by the server.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API served at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token is the session token in use, if any.
func (c *Client) Token() string {
	return c.token
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Query calls a query procedure and decodes its result into out.
func (c *Client) Query(ctx context.Context, name string, input, out interface{}) error {
	target := c.baseURL + "/api/rpc/" + name
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return errors.Wrap(err, "encode input")
		}
		target += "?input=" + url.QueryEscape(string(raw))
	}
	return c.do(ctx, fiber.Get(target), out)
}

// Mutate calls a mutation procedure and decodes its result into out.
func (c *Client) Mutate(ctx context.Context, name string, input, out interface{}) error {
	a := fiber.Post(c.baseURL + "/api/rpc/" + name)
	if input == nil {
		input = struct{}{}
	}
	return c.do(ctx, a.JSON(input), out)
}

func (c *Client) do(ctx context.Context, a *fiber.Agent, out interface{}) error {
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	a.Timeout(c.deadline(ctx))

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return errors.Wrap(errs[0], "request failed")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrapf(err, "decode response (status %d)", status)
	}
	if env.Error != nil {
		env.Error.Status = status
		return env.Error
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Result, out), "decode result")
}

// deadline bounds the request by the context deadline when it is sooner.
func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	return timeout
}

func (c *Client) GetRounds(ctx context.Context) ([]models.Round, error) {
	var rounds []models.Round
	return rounds, c.Query(ctx, "course.getRounds", nil, &rounds)
}

func (c *Client) GetMissionsByRoundID(ctx context.Context, roundID uint) ([]models.Mission, error) {
	var missions []models.Mission
	return missions, c.Query(ctx, "course.getMissionsByRoundId", models.RoundIDRequest{RoundID: roundID}, &missions)
}

func (c *Client) GetTopicsByMissionID(ctx context.Context, missionID uint) ([]models.Topic, error) {
	var topics []models.Topic
	return topics, c.Query(ctx, "course.getTopicsByMissionId", models.MissionIDRequest{MissionID: missionID}, &topics)
}

func (c *Client) GetAttachmentsByTopicID(ctx context.Context, topicID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	return attachments, c.Query(ctx, "course.getAttachmentsByTopicId", models.TopicIDRequest{TopicID: topicID}, &attachments)
}

func (c *Client) GetCommentsByMissionID(ctx context.Context, missionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	return comments, c.Query(ctx, "course.getCommentsByMissionId", models.MissionIDRequest{MissionID: missionID}, &comments)
}

func (c *Client) AddComment(ctx context.Context, missionID uint, content string) (uint, error) {
	var res models.SuccessResponse
	err := c.Mutate(ctx, "course.addComment", models.CreateCommentRequest{MissionID: missionID, Content: content}, &res)
	return res.ID, err
}

func (c *Client) GetUserProgress(ctx context.Context) ([]models.Progress, error) {
	var rows []models.Progress
	return rows, c.Query(ctx, "course.getUserProgress", nil, &rows)
}

func (c *Client) ToggleTopicProgress(ctx context.Context, topicID uint) (bool, error) {
	var res models.ToggleProgressResponse
	err := c.Mutate(ctx, "course.toggleTopicProgress", models.TopicIDRequest{TopicID: topicID}, &res)
	return res.Completed, err
}

func (c *Client) GetRoundProgress(ctx context.Context, roundID uint) (models.RoundProgress, error) {
	var p models.RoundProgress
	return p, c.Query(ctx, "course.getRoundProgress", models.RoundIDRequest{RoundID: roundID}, &p)
}

func (c *Client) GetAllRoundsProgress(ctx context.Context) ([]models.RoundProgress, error) {
	var all []models.RoundProgress
	return all, c.Query(ctx, "course.getAllRoundsProgress", nil, &all)
}

// Me returns the signed-in user, or nil.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user *models.User
	return user, c.Query(ctx, "auth.me", nil, &user)
}

// Login signs in with a password and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var res models.AuthResponse
	if err := c.Mutate(ctx, "auth.login", models.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.Mutate(ctx, "auth.logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Upload sends a file for a topic and returns its public URL. Failures carry
// the server's message unchanged.
func (c *Client) Upload(ctx context.Context, topicID uint, fileName string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read file")
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("topicId", fmt.Sprint(topicID))

	a := fiber.Post(c.baseURL + "/api/upload").
		FileData(&fiber.FormFile{Fieldname: "file", Name: fileName, Content: content}).
		MultipartForm(args)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	a.Timeout(c.deadline(ctx))

	var res struct {
		models.UploadResponse
		Error json.RawMessage `json:"error"`
	}
	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return "", errors.Wrap(errs[0], "upload failed")
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", errors.Wrapf(err, "decode upload response (status %d)", status)
	}
	if status != fiber.StatusOK || !res.Success {
		return "", uploadError(status, res.Error)
	}
	return res.URL, nil
}

// uploadError reads either a plain message or a structured error; requests
// rejected before reaching the relay carry the latter.
func uploadError(status int, raw json.RawMessage) *Error {
	e := &Error{Status: status}
	if err := json.Unmarshal(raw, &e.Message); err == nil {
		return e
	}
	if err := json.Unmarshal(raw, e); err != nil {
		e.Message = string(raw)
	}
	e.Status = status
	return e
}
