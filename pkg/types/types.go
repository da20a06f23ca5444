package types

// Container is the record the daemon returns for a container listing or
// lookup. Fields are declared explicitly; keys the daemon sends beyond
// these are dropped during decoding.
type Container struct {
	ID         string            `json:"id"`
	Names      string            `json:"names"`
	Image      string            `json:"image"`
	ImageID    string            `json:"imageid"`
	Command    []string          `json:"command"`
	CreatedAt  string            `json:"createdat"`
	RunningFor string            `json:"runningfor"`
	Status     string            `json:"status"`
	RootFsSize int64             `json:"rootfssize"`
	RwSize     int64             `json:"rwsize"`
	Labels     map[string]string `json:"labels"`
	Mounts     []ContainerMount  `json:"mounts"`
	Ports      []ContainerPort   `json:"ports"`
	Running    bool              `json:"containerrunning"`
	ExitCode   int               `json:"exitcode"`
	Pod        string            `json:"pod"`
}

// ContainerMount describes one mount of a container.
type ContainerMount struct {
	Destination string   `json:"destination"`
	Type        string   `json:"type"`
	Source      string   `json:"source"`
	Options     []string `json:"options"`
}

// ContainerPort describes one published port of a container.
type ContainerPort struct {
	HostPort      int    `json:"host_port"`
	HostIP        string `json:"host_ip"`
	ContainerPort int    `json:"container_port"`
	Protocol      string `json:"protocol"`
}

// ContainerStats is a point-in-time resource usage sample for a container.
type ContainerStats struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CPU         float64 `json:"cpu"`
	CPUNano     int64   `json:"cpu_nano"`
	SystemNano  int64   `json:"system_nano"`
	MemUsage    int64   `json:"mem_usage"`
	MemLimit    int64   `json:"mem_limit"`
	MemPerc     float64 `json:"mem_perc"`
	NetInput    int64   `json:"net_input"`
	NetOutput   int64   `json:"net_output"`
	BlockInput  int64   `json:"block_input"`
	BlockOutput int64   `json:"block_output"`
	PIDs        int64   `json:"pids"`
}

// ContainerChanges lists filesystem changes recorded against a container.
type ContainerChanges struct {
	Changed []string `json:"changed"`
	Added   []string `json:"added"`
	Deleted []string `json:"deleted"`
}

// Image is the record the daemon returns for an image.
type Image struct {
	ID          string            `json:"id"`
	Digest      string            `json:"digest"`
	ParentID    string            `json:"parentId"`
	RepoTags    []string          `json:"repoTags"`
	RepoDigests []string          `json:"repoDigests"`
	Created     string            `json:"created"`
	Size        int64             `json:"size"`
	VirtualSize int64             `json:"virtualSize"`
	Containers  int64             `json:"containers"`
	Labels      map[string]string `json:"labels"`
	IsParent    bool              `json:"isParent"`
}

// ImageHistory is one layer entry of an image's history.
type ImageHistory struct {
	ID        string   `json:"id"`
	Created   string   `json:"created"`
	CreatedBy string   `json:"createdBy"`
	Tags      []string `json:"tags"`
	Size      int64    `json:"size"`
	Comment   string   `json:"comment"`
}

// Pod is the record the daemon returns for a pod.
type Pod struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	CgroupParent       string            `json:"cgroup"`
	Status             string            `json:"status"`
	Labels             map[string]string `json:"labels"`
	NumberOfContainers string            `json:"numberofcontainers"`
	Containers         []PodContainer    `json:"containersinfo"`
}

// PodContainer is a pod's view of one member container.
type PodContainer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Volume is the record the daemon returns for a volume.
type Volume struct {
	Name       string            `json:"volumeName"`
	Driver     string            `json:"driver"`
	MountPoint string            `json:"mountPoint"`
	Labels     map[string]string `json:"labels"`
	Options    map[string]string `json:"volumeOptions"`
	Scope      string            `json:"scope"`
}

// Version reports daemon and protocol version details.
type Version struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit"`
	Built     int64  `json:"built"`
	OsArch    string `json:"os_arch"`
	Remote    bool   `json:"remote"`
}

// Info reports daemon host details.
type Info struct {
	Host struct {
		Arch     string `json:"arch"`
		OS       string `json:"os"`
		Hostname string `json:"hostname"`
		Kernel   string `json:"kernel"`
		CPUs     int64  `json:"cpus"`
		MemTotal int64  `json:"mem_total"`
		MemFree  int64  `json:"mem_free"`
		Uptime   string `json:"uptime"`
	} `json:"host"`
	Store struct {
		ContainerCount int64  `json:"containers"`
		ImageCount     int64  `json:"images"`
		GraphDriver    string `json:"graph_driver_name"`
		RunRoot        string `json:"run_root"`
	} `json:"store"`
	Registries         []string `json:"registries"`
	InsecureRegistries []string `json:"insecure_registries"`
	PodmanVersion      string   `json:"podman_version"`
}
