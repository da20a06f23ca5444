/*
Package client is the top-level API for talking to a container daemon over
varlink, locally or through an ssh tunnel.

	c, err := client.New(ctx, client.WithURI("unix:/run/podman/io.podman"))
	if err != nil {
		return err
	}
	defer c.Close()

	ctrs, err := c.Containers().List(ctx)

Remote daemons are reached by tunneling the socket over ssh:

	c, err := client.New(ctx,
		client.WithURI("unix:/tmp/podman.sock"),
		client.WithRemoteURI("ssh://core@host/run/podman/io.podman"),
		client.WithIdentityFile("~/.ssh/id_rsa"))

Every facade method runs in its own scoped transport session; mutating
operations re-fetch the resource record afterwards, retrying on transient
channel resets. Daemon faults surface as errdefs.DaemonError kinds.
*/
package client
