package v1

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quka-ai/workbench/app/core"
	"github.com/quka-ai/workbench/app/core/srv"
	"github.com/quka-ai/workbench/app/store"
	"github.com/quka-ai/workbench/pkg/errors"
	"github.com/quka-ai/workbench/pkg/github"
	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/utils"
)

const CLOSE_REASON_DELETED = "workspace deleted"

var nowFunc = time.Now

type WorkspaceLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewWorkspaceLogic(ctx context.Context, core *core.Core) *WorkspaceLogic {
	return &WorkspaceLogic{
		ctx:  ctx,
		core: core,
	}
}

func GenWorkspaceID(userID string, millis int64) string {
	return fmt.Sprintf("%s-%d", userID, millis)
}

// causeData exposes err to the localised message template as {{.Error}}.
func causeData(err error) map[string]interface{} {
	return map[string]interface{}{"Error": err.Error()}
}

func (l *WorkspaceLogic) Create(req types.CreateWorkspaceRequest) (*types.CreateWorkspaceResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, errors.New("WorkspaceLogic.Create.UserID", i18n.ERROR_MISSING_USER_ID, nil).Code(http.StatusBadRequest)
	}
	projectName := strings.TrimSpace(req.ProjectName)
	if projectName == "" {
		return nil, errors.New("WorkspaceLogic.Create.ProjectName", i18n.ERROR_MISSING_PROJECT_NAME, nil).Code(http.StatusBadRequest)
	}

	now := nowFunc()
	millis := now.UnixMilli()
	workspace := types.Workspace{
		ID:          GenWorkspaceID(userID, millis),
		UserID:      userID,
		ProjectName: projectName,
		Description: req.Description,
		Mode:        l.core.Srv().Strategy(),
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
	}

	// ids are only unique per user and millisecond, refuse before touching GitHub or the provisioner
	if _, err := l.core.Store().WorkspaceStore().Get(l.ctx, workspace.ID); err == nil {
		return nil, errors.New("WorkspaceLogic.Create.WorkspaceStore.Get", i18n.ERROR_WORKSPACE_EXISTS, store.ErrWorkspaceExists).Code(http.StatusConflict)
	} else if err != sql.ErrNoRows {
		return nil, errors.New("WorkspaceLogic.Create.WorkspaceStore.Get", i18n.ERROR_INTERNAL, err)
	}

	if gh := l.core.Srv().GitHub(); gh != nil {
		repo, err := gh.CreateFromTemplate(l.ctx, github.RepoName(projectName, millis), req.Description)
		if err != nil {
			return nil, errors.New("WorkspaceLogic.Create.GitHub.CreateFromTemplate", i18n.ERROR_REPOSITORY_CREATE, err).Code(http.StatusBadGateway).WithData(causeData(err))
		}
		workspace.RepoURL = repo.HTMLURL
	}

	switch workspace.Mode {
	case types.STRATEGY_PROVISIONER:
		workspace.Status = types.WORKSPACE_STATUS_RUNNING
		if err := l.core.Srv().Provisioner().Create(l.ctx, workspace.RepoURL, workspace.ID); err != nil {
			// keep the record so housekeeping can clean up whatever the provisioner left behind
			workspace.Status = types.WORKSPACE_STATUS_ERROR
			if serr := l.core.Store().WorkspaceStore().Create(l.ctx, workspace); serr != nil {
				slog.Error("failed to record broken workspace", slog.String("component", "workspace"), slog.String("workspace_id", workspace.ID), slog.String("error", serr.Error()))
			}
			return nil, errors.New("WorkspaceLogic.Create.Provisioner.Create", i18n.ERROR_PROVISIONER_FAILED, err).Code(http.StatusBadGateway).WithData(causeData(err))
		}
	default:
		workspace.Status = types.WORKSPACE_STATUS_READY
	}

	if err := l.core.Store().WorkspaceStore().Create(l.ctx, workspace); err != nil {
		if err == store.ErrWorkspaceExists {
			return nil, errors.New("WorkspaceLogic.Create.WorkspaceStore.Create", i18n.ERROR_WORKSPACE_EXISTS, err).Code(http.StatusConflict)
		}
		return nil, errors.New("WorkspaceLogic.Create.WorkspaceStore.Create", i18n.ERROR_INTERNAL, err)
	}

	slog.Info("workspace created", slog.String("component", "workspace"),
		slog.String("workspace_id", workspace.ID),
		slog.String("mode", string(workspace.Mode)),
		slog.String("repo_url", workspace.RepoURL))

	return &types.CreateWorkspaceResponse{
		WorkspaceID: workspace.ID,
		RepoURL:     workspace.RepoURL,
		Status:      workspace.Status,
		Mode:        workspace.Mode,
	}, nil
}

func (l *WorkspaceLogic) get(trace, id string) (*types.Workspace, error) {
	workspace, err := l.core.Store().WorkspaceStore().Get(l.ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(trace+".NotFound", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New(trace, i18n.ERROR_INTERNAL, err)
	}
	return workspace, nil
}

// strategyFor prefers the mode recorded at creation, a container workspace keeps talking to its container.
func (l *WorkspaceLogic) strategyFor(workspace *types.Workspace) types.DispatchStrategy {
	if workspace != nil && workspace.Mode != "" {
		return workspace.Mode
	}
	return l.core.Srv().Strategy()
}

func (l *WorkspaceLogic) provisioner(strategy types.DispatchStrategy) (srv.Provisioner, error) {
	if strategy != types.STRATEGY_PROVISIONER {
		return nil, nil
	}
	p := l.core.Srv().Provisioner()
	if p == nil {
		return nil, errors.ERROR_PROVISIONER_UNAVAILABLE
	}
	return p, nil
}

func (l *WorkspaceLogic) dispatch(workspaceID string, strategy types.DispatchStrategy, message string) (string, error) {
	switch strategy {
	case types.STRATEGY_PROVISIONER:
		p, err := l.provisioner(strategy)
		if err != nil {
			return "", err
		}
		return p.Exec(l.ctx, workspaceID, message)
	default:
		if l.core.Srv().AI() == nil {
			return "", errors.ERROR_UNSUPPORTED_FEATURE
		}
		res, err := l.core.Srv().AI().WorkspaceChat(l.ctx, workspaceID, message)
		if err != nil {
			return "", err
		}
		return res.Text, nil
	}
}

// Dispatch hands message to the workspace backend. Every failure is folded into the result.
func (l *WorkspaceLogic) Dispatch(workspaceID, message string) types.DispatchResult {
	workspace, err := l.core.Store().WorkspaceStore().Get(l.ctx, workspaceID)
	if err != nil && err != sql.ErrNoRows {
		return types.DispatchFailed(l.core.Srv().Strategy(), err)
	}
	if workspace == nil {
		return types.DispatchFailed(l.core.Srv().Strategy(), fmt.Errorf("workspace %s not found", workspaceID))
	}
	return l.dispatchTo(workspace, message)
}

func (l *WorkspaceLogic) dispatchTo(workspace *types.Workspace, message string) types.DispatchResult {
	strategy := l.strategyFor(workspace)
	timer := l.core.Metrics().DispatchTimer(strategy)
	text, err := l.dispatch(workspace.ID, strategy, message)
	timer.ObserveDuration()

	if err != nil {
		l.core.Metrics().DispatchErrorInc(strategy)
		slog.Error("dispatch failed", slog.String("component", "workspace"),
			slog.String("workspace_id", workspace.ID),
			slog.String("strategy", string(strategy)),
			slog.String("message", utils.Truncate(message, 80)),
			slog.String("error", err.Error()))
		return types.DispatchFailed(strategy, err)
	}

	return types.DispatchResult{
		Success:  true,
		Response: text,
		Strategy: strategy,
	}
}

// Chat validates the request before dispatching. The returned error covers
// bad input and unknown workspaces only, backend failures stay in the result.
func (l *WorkspaceLogic) Chat(workspaceID, message string) (types.DispatchResult, error) {
	if strings.TrimSpace(message) == "" {
		return types.DispatchResult{}, errors.New("WorkspaceLogic.Chat.Message", i18n.ERROR_EMPTY_MESSAGE, nil).Code(http.StatusBadRequest)
	}

	workspace, err := l.get("WorkspaceLogic.Chat.WorkspaceStore.Get", workspaceID)
	if err != nil {
		return types.DispatchResult{}, err
	}

	if ai := l.core.Srv().AI(); ai != nil && l.strategyFor(workspace) != types.STRATEGY_PROVISIONER {
		over, err := ai.OverLimit(message)
		if err != nil {
			return types.DispatchResult{}, errors.New("WorkspaceLogic.Chat.AI.OverLimit", i18n.ERROR_INTERNAL, err)
		}
		if over {
			return types.DispatchResult{}, errors.New("WorkspaceLogic.Chat.AI.OverLimit", i18n.ERROR_MESSAGE_TOO_LONG, srv.ErrPromptTooLong).Code(http.StatusBadRequest)
		}
	}

	return l.dispatchTo(workspace, message), nil
}

func (l *WorkspaceLogic) Status(workspaceID string) (*types.WorkspaceStatusResponse, error) {
	workspace, err := l.get("WorkspaceLogic.Status.WorkspaceStore.Get", workspaceID)
	if err != nil {
		return nil, err
	}

	res := &types.WorkspaceStatusResponse{
		WorkspaceID: workspace.ID,
		Status:      workspace.Status,
		Mode:        workspace.Mode,
		RepoURL:     workspace.RepoURL,
		CreatedAt:   workspace.CreatedAt,
	}

	p, err := l.provisioner(l.strategyFor(workspace))
	if err != nil {
		return nil, errors.New("WorkspaceLogic.Status.Provisioner", i18n.ERROR_PROVISIONER_UNAVAILABLE, err).Code(http.StatusServiceUnavailable)
	}
	if p == nil {
		return res, nil
	}

	info, err := p.Info(l.ctx, workspace.ID)
	if err != nil {
		return nil, errors.New("WorkspaceLogic.Status.Provisioner.Info", i18n.ERROR_PROVISIONER_FAILED, err).Code(http.StatusBadGateway).WithData(causeData(err))
	}
	res.Details = info.Raw

	if info.Status != "" && types.WorkspaceStatus(info.Status) != workspace.Status {
		res.Status = types.WorkspaceStatus(info.Status)
		if err = l.core.Store().WorkspaceStore().UpdateStatus(l.ctx, workspace.ID, res.Status); err != nil {
			slog.Warn("failed to sync workspace status", slog.String("component", "workspace"),
				slog.String("workspace_id", workspace.ID), slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func (l *WorkspaceLogic) lock(trace, workspaceID string) (context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(l.ctx)
	ok, err := l.core.TryLock(ctx, "workspace:"+workspaceID)
	if err != nil {
		cancel()
		return nil, errors.New(trace, i18n.ERROR_INTERNAL, err)
	}
	if !ok {
		cancel()
		return nil, errors.New(trace, i18n.ERROR_OPERATION_IN_PROGRESS, nil).Code(http.StatusConflict)
	}
	return cancel, nil
}

func (l *WorkspaceLogic) Stop(workspaceID string) (*types.WorkspaceStatusResponse, error) {
	workspace, err := l.get("WorkspaceLogic.Stop.WorkspaceStore.Get", workspaceID)
	if err != nil {
		return nil, err
	}

	unlock, err := l.lock("WorkspaceLogic.Stop.TryLock", workspace.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := l.provisioner(l.strategyFor(workspace))
	if err != nil {
		return nil, errors.New("WorkspaceLogic.Stop.Provisioner", i18n.ERROR_PROVISIONER_UNAVAILABLE, err).Code(http.StatusServiceUnavailable)
	}
	if p != nil {
		if err = p.Stop(l.ctx, workspace.ID); err != nil {
			return nil, errors.New("WorkspaceLogic.Stop.Provisioner.Stop", i18n.ERROR_PROVISIONER_FAILED, err).Code(http.StatusBadGateway).WithData(causeData(err))
		}
	}

	if err = l.core.Store().WorkspaceStore().UpdateStatus(l.ctx, workspace.ID, types.WORKSPACE_STATUS_STOPPED); err != nil {
		return nil, errors.New("WorkspaceLogic.Stop.WorkspaceStore.UpdateStatus", i18n.ERROR_INTERNAL, err)
	}

	return &types.WorkspaceStatusResponse{
		WorkspaceID: workspace.ID,
		Status:      types.WORKSPACE_STATUS_STOPPED,
		Mode:        workspace.Mode,
	}, nil
}

func (l *WorkspaceLogic) Delete(workspaceID string) error {
	workspace, err := l.get("WorkspaceLogic.Delete.WorkspaceStore.Get", workspaceID)
	if err != nil {
		return err
	}

	unlock, err := l.lock("WorkspaceLogic.Delete.TryLock", workspace.ID)
	if err != nil {
		return err
	}
	defer unlock()

	p, err := l.provisioner(l.strategyFor(workspace))
	if err != nil {
		return errors.New("WorkspaceLogic.Delete.Provisioner", i18n.ERROR_PROVISIONER_UNAVAILABLE, err).Code(http.StatusServiceUnavailable)
	}
	if p != nil {
		if err = p.Delete(l.ctx, workspace.ID); err != nil {
			return errors.New("WorkspaceLogic.Delete.Provisioner.Delete", i18n.ERROR_PROVISIONER_FAILED, err).Code(http.StatusBadGateway).WithData(causeData(err))
		}
	}

	if err = l.core.Store().WorkspaceStore().Delete(l.ctx, workspace.ID); err != nil {
		return errors.New("WorkspaceLogic.Delete.WorkspaceStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	l.core.Srv().RelayHub().Evict(workspace.ID, CLOSE_REASON_DELETED)

	slog.Info("workspace deleted", slog.String("component", "workspace"), slog.String("workspace_id", workspace.ID))
	return nil
}

func (l *WorkspaceLogic) List(userID string) ([]*types.Workspace, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("WorkspaceLogic.List.UserID", i18n.ERROR_MISSING_USER_ID, nil).Code(http.StatusBadRequest)
	}

	list, err := l.core.Store().WorkspaceStore().ListByUser(l.ctx, userID)
	if err != nil {
		return nil, errors.New("WorkspaceLogic.List.WorkspaceStore.ListByUser", i18n.ERROR_INTERNAL, err)
	}
	if list == nil {
		list = []*types.Workspace{}
	}
	return list, nil
}
