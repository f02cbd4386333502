package docker

import (
	"bytes"
	"context"
	"fmt"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
	"github.com/moby/moby/pkg/stdcopy"

	"github.com/dockdeck/dockdeck/internal/logging"
)

// Exec runs a command inside a running container, captures the
// demultiplexed output and waits for the exit code. The caller's context
// bounds the whole operation.
func (s *sdkClient) Exec(ctx context.Context, id, workdir string, cmd []string) (ExecResult, error) {
	logging.Get().Info().Str("container", id).Strs("cmd", cmd).Str("workdir", workdir).Msg("running exec")
	created, err := s.cli.ContainerExecCreate(ctx, id, containertypes.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   workdir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec create: %w", err)
	}

	attach, err := s.cli.ContainerExecAttach(ctx, created.ID, containertypes.ExecStartOptions{})
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec attach: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return ExecResult{}, fmt.Errorf("exec read output: %w", err)
	}

	code, err := s.waitForExec(ctx, created.ID)
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// waitForExec polls exec inspect until the command finishes or the context
// is done.
func (s *sdkClient) waitForExec(ctx context.Context, execID string) (int, error) {
	for {
		insp, err := s.cli.ContainerExecInspect(ctx, execID)
		if err != nil {
			return 0, fmt.Errorf("exec inspect: %w", err)
		}
		if !insp.Running {
			return insp.ExitCode, nil
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("exec canceled: %w", ctx.Err())
		case <-time.After(execPollInterval):
		}
	}
}

// PathExists checks that path is an existing directory inside the
// container. Implemented as an exec because the stat endpoint does not
// distinguish directories portably across image filesystems.
func (s *sdkClient) PathExists(ctx context.Context, id, path string) (bool, error) {
	res, err := s.Exec(ctx, id, "/", []string{"test", "-d", path})
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}
