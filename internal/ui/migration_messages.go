package ui

import "fmt"

const (
	installedHeaderTemplateConstant           = "Currently installed migrations for %s:"
	listEntryTemplateConstant                 = "- %s"
	performedHeaderTemplateConstant           = "Performed migrations for %s:"
	postponedTemplateConstant                 = "Some migrations for %s are postponed due to dependencies."
	noMigrationsFoundTemplateConstant         = "No migrations were found for %s."
	alreadyLatestTemplateConstant             = "Already on the latest migration for %s."
	newlyInstalledHeaderTemplateConstant      = "Newly installed migrations for %s:"
	alreadyCurrentTemplateConstant            = "Already on the current migration version for %s."
	alreadyLatestVersionTemplateConstant      = "You are already on the latest migration version for %s."
	revertedHeaderTemplateConstant            = "Reverted migrations for %s:"
	nothingToRevertTemplateConstant           = "There are no migrations installed to revert for %s."
	currentRejectsVersionMessageConstant      = "You can not define a version when using the \"current\" command."
	versionSingleTargetMessageConstant        = "Migration: version only accepts 1 item."
	missingModuleTemplateConstant             = "Requested module \"%s\" does not exist!"
	missingPackageTemplateConstant            = "Requested package \"%s\" does not exist!"
	migrationLoopMessageConstant              = "Migration loop detected! Check if there is a dependency that can't be fulfilled by the current selection!"
	mutuallyExclusiveSelectionMessageConstant = "--all and --installed are mutually exclusive!"
)

// MigrationMessages builds the console lines printed while migrating targets.
// Target labels look like "module:auth".
type MigrationMessages struct{}

// InstalledHeader introduces the list of installed migrations.
func (MigrationMessages) InstalledHeader(targetLabel string) string {
	return fmt.Sprintf(installedHeaderTemplateConstant, targetLabel)
}

// ListEntry formats one migration identifier of a list.
func (MigrationMessages) ListEntry(migrationIdentifier string) string {
	return fmt.Sprintf(listEntryTemplateConstant, migrationIdentifier)
}

// PerformedHeader introduces migrations applied by run.
func (MigrationMessages) PerformedHeader(targetLabel string) string {
	return fmt.Sprintf(performedHeaderTemplateConstant, targetLabel)
}

// Postponed reports a target held back by an unmet dependency.
func (MigrationMessages) Postponed(targetLabel string) string {
	return fmt.Sprintf(postponedTemplateConstant, targetLabel)
}

// NoMigrationsFound reports that an explicit version matched nothing to execute.
func (MigrationMessages) NoMigrationsFound(targetLabel string) string {
	return fmt.Sprintf(noMigrationsFoundTemplateConstant, targetLabel)
}

// AlreadyLatest reports that run had nothing to apply.
func (MigrationMessages) AlreadyLatest(targetLabel string) string {
	return fmt.Sprintf(alreadyLatestTemplateConstant, targetLabel)
}

// NewlyInstalledHeader introduces migrations applied by current and up.
func (MigrationMessages) NewlyInstalledHeader(targetLabel string) string {
	return fmt.Sprintf(newlyInstalledHeaderTemplateConstant, targetLabel)
}

// AlreadyCurrent reports that current had nothing to apply.
func (MigrationMessages) AlreadyCurrent(targetLabel string) string {
	return fmt.Sprintf(alreadyCurrentTemplateConstant, targetLabel)
}

// AlreadyLatestVersion reports that up had nothing to apply.
func (MigrationMessages) AlreadyLatestVersion(targetLabel string) string {
	return fmt.Sprintf(alreadyLatestVersionTemplateConstant, targetLabel)
}

// RevertedHeader introduces migrations reverted by down.
func (MigrationMessages) RevertedHeader(targetLabel string) string {
	return fmt.Sprintf(revertedHeaderTemplateConstant, targetLabel)
}

// NothingToRevert reports that down had nothing to revert.
func (MigrationMessages) NothingToRevert(targetLabel string) string {
	return fmt.Sprintf(nothingToRevertTemplateConstant, targetLabel)
}

// CurrentRejectsVersion reports a version supplied to the current command.
func (MigrationMessages) CurrentRejectsVersion() string {
	return currentRejectsVersionMessageConstant
}

// VersionSingleTarget reports an explicit version used with several targets.
func (MigrationMessages) VersionSingleTarget() string {
	return versionSingleTargetMessageConstant
}

// MissingModule reports a requested module that does not exist.
func (MigrationMessages) MissingModule(moduleName string) string {
	return fmt.Sprintf(missingModuleTemplateConstant, moduleName)
}

// MissingPackage reports a requested package that does not exist.
func (MigrationMessages) MissingPackage(packageName string) string {
	return fmt.Sprintf(missingPackageTemplateConstant, packageName)
}

// MigrationLoop reports a pass that made no progress compared with the previous one.
func (MigrationMessages) MigrationLoop() string {
	return migrationLoopMessageConstant
}

// MutuallyExclusiveSelection reports --all combined with --installed.
func (MigrationMessages) MutuallyExclusiveSelection() string {
	return mutuallyExclusiveSelectionMessageConstant
}
