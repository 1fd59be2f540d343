package httpapi

import (
	"net/http"

	"tijara.org/internal/audit"
	"tijara.org/internal/auth"
)

func (a *API) handleInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := auth.Authorize(p, auth.PermUserInvite); err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req auth.InviteInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	invite, err := a.svc.Invite(r.Context(), p, req)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "invite.created", map[string]any{
		"invite_id": invite.ID,
		"email":     invite.Email,
		"role":      invite.Role,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"invite":  invite,
	})
}

func (a *API) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req auth.AcceptInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if t := r.URL.Query().Get("token"); t != "" && req.Token == "" {
		req.Token = t
	}

	user, err := a.svc.AcceptInvite(r.Context(), req)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "invite.accepted", map[string]any{
		"user_id":         user.ID,
		"organization_id": user.OrganizationID,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    user,
	})
}

type declineRequest struct {
	Token string `json:"token"`
}

func (a *API) handleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req declineRequest
	if t := r.URL.Query().Get("token"); t != "" {
		req.Token = t
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.svc.DeclineInvite(r.Context(), req.Token); err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "invite.declined", nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "invite declined",
	})
}
