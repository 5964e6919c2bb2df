package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/workbench/app/logic/v1"
	"github.com/quka-ai/workbench/app/response"
	"github.com/quka-ai/workbench/pkg/errors"
	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/utils"
)

func (s *HttpSrv) CreateWorkspace(c *gin.Context) {
	var (
		err error
		req types.CreateWorkspaceRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewWorkspaceLogic(c, s.Core).Create(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

type ChatResponse struct {
	Response string `json:"response"`
}

func (s *HttpSrv) ChatWorkspace(c *gin.Context) {
	var (
		err error
		req types.ChatRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewWorkspaceLogic(c, s.Core).Chat(c.Param("id"), req.Message)
	if err != nil {
		response.APIError(c, err)
		return
	}

	if !res.Success {
		response.APIError(c, errors.New("handler.ChatWorkspace.Dispatch", i18n.ERROR_DISPATCH_FAILED, nil).
			Code(http.StatusBadGateway).
			WithData(map[string]interface{}{"Error": res.Error}))
		return
	}

	response.APISuccess(c, ChatResponse{
		Response: res.Response,
	})
}

func (s *HttpSrv) GetWorkspaceStatus(c *gin.Context) {
	res, err := v1.NewWorkspaceLogic(c, s.Core).Status(c.Param("id"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

func (s *HttpSrv) StopWorkspace(c *gin.Context) {
	res, err := v1.NewWorkspaceLogic(c, s.Core).Stop(c.Param("id"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

type DeleteWorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
}

func (s *HttpSrv) DeleteWorkspace(c *gin.Context) {
	id := c.Param("id")
	if err := v1.NewWorkspaceLogic(c, s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, DeleteWorkspaceResponse{
		WorkspaceID: id,
	})
}

type ListWorkspacesRequest struct {
	UserID string `form:"userId"`
}

type ListWorkspacesResponse struct {
	Workspaces []*types.Workspace `json:"workspaces"`
}

func (s *HttpSrv) ListWorkspaces(c *gin.Context) {
	var (
		err error
		req ListWorkspacesRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewWorkspaceLogic(c, s.Core).List(req.UserID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListWorkspacesResponse{
		Workspaces: list,
	})
}
