package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
	"knaxim-client/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	body   api.Body
	params api.Form
}

// recorder is a Requester that remembers calls and answers with a fixed
// JSON body.
type recorder struct {
	calls []call
	reply string
	err   error
}

func (r *recorder) respond(c call) (*api.Response, error) {
	r.calls = append(r.calls, c)
	if r.err != nil {
		return nil, r.err
	}
	reply := r.reply
	if reply == "" {
		reply = "{}"
	}
	return &api.Response{Status: http.StatusOK, Data: []byte(reply), Raw: []byte(reply)}, nil
}

func (r *recorder) Get(_ context.Context, path string) (*api.Response, error) {
	return r.respond(call{method: http.MethodGet, path: path})
}

func (r *recorder) Query(_ context.Context, path string, params api.Form) (*api.Response, error) {
	return r.respond(call{method: http.MethodGet, path: path, params: params})
}

func (r *recorder) Post(_ context.Context, path string, body api.Body) (*api.Response, error) {
	return r.respond(call{method: http.MethodPost, path: path, body: body})
}

func (r *recorder) Put(_ context.Context, path string, body api.Body) (*api.Response, error) {
	return r.respond(call{method: http.MethodPut, path: path, body: body})
}

func (r *recorder) Delete(_ context.Context, path string, body api.Body) (*api.Response, error) {
	return r.respond(call{method: http.MethodDelete, path: path, body: body})
}

func (r *recorder) URL(path ...string) string {
	return "http://knaxim.test/api/" + path[0]
}

func (r *recorder) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, r.calls)
	return r.calls[len(r.calls)-1]
}

func formOf(t *testing.T, c call) map[string][]string {
	t.Helper()
	form, ok := c.body.(api.Form)
	require.True(t, ok, "body is %T", c.body)
	return form.Values()
}

func TestUserServiceLogin(t *testing.T) {
	rec := &recorder{reply: `{"id":"u1","name":"alice"}`}
	svc := NewUserService(rec, false)

	user, err := svc.Login(context.Background(), dto.LoginRequest{Name: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Id)

	c := rec.last(t)
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "user/login", c.path)
	assert.Equal(t, map[string][]string{"name": {"alice"}, "pass": {"wonderland"}}, formOf(t, c))
}

func TestUserServiceInfo(t *testing.T) {
	rec := &recorder{reply: `{"id":"u2","name":"bob"}`}
	svc := NewUserService(rec, false)
	ctx := context.Background()

	_, err := svc.Info(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, call{method: http.MethodGet, path: "user"}, rec.last(t))

	_, err = svc.Info(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", rec.last(t).params.Values().Get("id"))
}

func TestValidationFailsBeforeRequest(t *testing.T) {
	rec := &recorder{}
	svc := NewUserService(rec, true)

	err := svc.Create(context.Background(), dto.RegisterRequest{Name: "carol", Password: "123", Email: "nope"})

	var re *apperr.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "UserService.create", re.Op)
	assert.Contains(t, re.Message, "invalid request")
	assert.Contains(t, re.Message, "Password failed min")
	assert.Contains(t, re.Message, "Email failed email")
	assert.Empty(t, rec.calls)
}

func TestFolderServiceOmitsEmptyGroup(t *testing.T) {
	rec := &recorder{reply: `{"folders":["finance"]}`}
	svc := NewFolderService(rec, false)
	ctx := context.Background()

	names, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, names)
	assert.Empty(t, rec.last(t).params.Values())

	err = svc.Add(ctx, dto.FolderContentRequest{Name: "q1 plans", FileIds: []string{"f1", "f2"}, Group: "g1"})
	require.NoError(t, err)
	c := rec.last(t)
	assert.Equal(t, "dir/q1%20plans/content", c.path)
	assert.Equal(t, map[string][]string{"id": {"f1", "f2"}, "group": {"g1"}}, formOf(t, c))
}

func TestSearchServiceFileTagsSendsJSON(t *testing.T) {
	rec := &recorder{reply: `{"matched":[{"file":{"id":"f1","name":"report"},"count":2}]}`}
	svc := NewSearchService(rec, false)

	resp, err := svc.FileTags(context.Background(), dto.TagSearchRequest{
		Context: []dto.SearchContext{NewOwnerContext("u1", "")},
		Match:   NewMatchCondition("nasa", "", false, ""),
	})
	require.NoError(t, err)
	require.Len(t, resp.Matched, 1)
	assert.Equal(t, int64(2), resp.Matched[0].Count)

	c := rec.last(t)
	assert.Equal(t, "search/tags", c.path)
	body, ok := c.body.(api.JSON)
	require.True(t, ok)
	req := body.Value.(dto.TagSearchRequest)
	assert.Equal(t, "nasa", req.Match)
}

func TestNewMatchCondition(t *testing.T) {
	assert.Equal(t, "growth", NewMatchCondition("growth", "", false, ""))
	assert.Equal(t, []dto.MatchCondition{{TagType: "topic", Word: "growth", Regex: true, Owner: "u1"}},
		NewMatchCondition("growth", "topic", true, "u1"))
}

func TestNLPServiceRejectsBadRange(t *testing.T) {
	rec := &recorder{}
	svc := NewNLPService(rec, false)

	_, err := svc.Info(context.Background(), dto.NLPRequest{Fid: "f1", Category: "t", Start: 10, End: 60})
	require.Error(t, err)
	assert.Empty(t, rec.calls)

	_, err = svc.Info(context.Background(), dto.NLPRequest{Fid: "f1", Category: "t", Start: 0, End: 3})
	require.NoError(t, err)
	assert.Equal(t, "nlp/file/f1/t/0/3", rec.last(t).path)
}

func TestServerMessageBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"file not found"}`))
	}))
	defer srv.Close()

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	svc := NewFileService(client, true)

	_, err = svc.Info(context.Background(), "missing")

	var re *apperr.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "file not found", re.Message)
	assert.Equal(t, http.StatusNotFound, re.Status())
	assert.Equal(t, "404 FileService.info file not found", re.Error())

	var se *api.StatusError
	assert.ErrorAs(t, err, &se)
}

func TestTransportErrorKeepsMessage(t *testing.T) {
	rec := &recorder{err: errors.New("connection refused")}
	svc := NewGroupService(rec, false)

	_, err := svc.Info(context.Background(), "g1")
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 0, apperr.StatusOf(err))
}

func TestNewServicesWiresEveryResource(t *testing.T) {
	svcs := NewServices(&recorder{}, false)
	assert.NotNil(t, svcs.User)
	assert.NotNil(t, svcs.File)
	assert.NotNil(t, svcs.Folder)
	assert.NotNil(t, svcs.Group)
	assert.NotNil(t, svcs.Owner)
	assert.NotNil(t, svcs.Permission)
	assert.NotNil(t, svcs.Search)
	assert.NotNil(t, svcs.NLP)
	assert.NotNil(t, svcs.Acronym)
}
