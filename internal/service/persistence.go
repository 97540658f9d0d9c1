package service

import (
	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/pkg/code"
)

// backendRouter picks the repository that serves an identity
// backendRouter 为身份选择对应的存储后端
type backendRouter struct {
	mode   string
	local  domain.NoteRepository
	remote domain.NoteRepository
}

func newBackendRouter(mode string, local, remote domain.NoteRepository) *backendRouter {
	if mode == "" {
		mode = PersistenceAuto
	}
	return &backendRouter{mode: mode, local: local, remote: remote}
}

// pick returns the repository and its backend name
func (r *backendRouter) pick(identity domain.Identity) (domain.NoteRepository, string, error) {
	switch r.mode {
	case PersistenceLocal:
		return r.local, BackendLocal, nil
	case PersistenceRemote:
		if identity.IsAnonymous() {
			return nil, "", code.ErrorNotUserAuthToken
		}
		return r.remote, BackendRemote, nil
	}
	if identity.IsAnonymous() {
		return r.local, BackendLocal, nil
	}
	return r.remote, BackendRemote, nil
}
