package errors

import (
	"fmt"
)

// TerraformStateError creates a collector error for a failed terraform
// state read with guidance
func TerraformStateError(dir string, originalErr error) *DriftscanError {
	err := New(ErrorTypeCollector, ProviderTerraform, "Failed to read Terraform state")

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		fmt.Sprintf("Run 'terraform init' in %s", dir),
		"Check that the state backend is reachable",
		"Set collectors.terraform.dir to the working directory that holds your configuration",
	)
	err.WithVerify(fmt.Sprintf("terraform -chdir=%s show", dir))
	err.WithHelp("driftscan status")

	return err
}

// TerraformDecodeError creates a collector error for unparseable state output
func TerraformDecodeError(originalErr error) *DriftscanError {
	err := New(ErrorTypeCollector, ProviderTerraform, "Failed to parse Terraform state JSON")

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		"Upgrade terraform: the -json output needs 0.12 or newer",
		"Run 'terraform show -json' manually and inspect the output",
	)
	err.WithVerify("terraform version")

	return err
}

// DockerStateError creates a collector error for a failed docker query
// with guidance
func DockerStateError(originalErr error) *DriftscanError {
	err := New(ErrorTypeCollector, ProviderDocker, "Failed to read Docker state")

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		"Start the Docker daemon",
		"Add your user to the docker group, or run with elevated permissions",
		"Set collectors.docker.binary if docker is not on PATH",
	)
	err.WithVerify("docker info")
	err.WithHelp("driftscan status")

	return err
}

// StorageOpenError creates a storage error for a database that could not
// be opened or migrated
func StorageOpenError(path string, originalErr error) *DriftscanError {
	err := New(ErrorTypeStorage, ProviderNone, fmt.Sprintf("Failed to open report database at %s", path))

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		"Check that the parent directory exists and is writable",
		"Set storage.path to a writable location",
		"Remove the database file if it is corrupted; history will restart",
	)
	err.WithVerify(fmt.Sprintf("ls -l %s", path))
	err.WithHelp("driftscan status")

	return err
}

// ConfigFileError creates a configuration error with guidance
func ConfigFileError(path string, originalErr error) *DriftscanError {
	err := New(ErrorTypeConfiguration, ProviderNone, fmt.Sprintf("Failed to load configuration from %s", path))

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		"Fix the YAML syntax in the configuration file",
		"Remove the file to fall back to defaults",
	)
	err.WithVerify(fmt.Sprintf("cat %s", path))

	return err
}

// WebhookError creates a notification error with guidance
func WebhookError(originalErr error) *DriftscanError {
	err := New(ErrorTypeNotification, ProviderNone, "Failed to deliver webhook notification")

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		"Check notifications.webhook_url points at a reachable endpoint",
		"Check network connectivity and proxy settings",
	)
	err.WithVerify("curl -X POST -d '{\"text\":\"ping\"}' <webhook_url>")

	return err
}
