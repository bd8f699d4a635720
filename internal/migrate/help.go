package migrate

// helpTextConstant documents the migrate command family.
const helpTextConstant = `Usage:
    migrix migrate[:command] [--version=X]

Commands:
    help     shows this text
    current  migrates to the version defined in the migrations.current_versions configuration
    up       migrate up to the next version
    down     migrate down to the previous version
    run      run all migrations (default)

Options:
    -v, [--version]  # Migrate to a specific version (only 1 item at a time)
                     # If no version is given, it lists all installed migrations
    --catchup        # Use if you have out-of-sequence migrations that can be safely run
    --installed      # shortcut for --modules=<list> --packages=<list> --default, it uses
                       the migrations.always_load configuration to determine what to migrate
    --all            # shortcut for --modules --packages --default

    # The following disable application migrations unless you add --default to the command
    --default                               # re-enables application migrations
    --modules -m                            # Migrates all modules
    --modules=item1,item2 -m=item1,item2    # Migrates specific modules
    --packages -p                           # Migrates all packages
    --packages=item1,item2 -p=item1,item2   # Migrates specific packages

Description:
    The migrate command runs migrations. You can go up, down, to the configured current
    version, or by default to the latest migration.

Examples:
    migrix migrate
    migrix migrate:current
    migrix migrate:up -v=6
    migrix migrate:down
    migrix migrate --version=201203171206
    migrix migrate --modules --packages --default
    migrix migrate:up --modules=module1,module2 --packages=package1
    migrix migrate --modules=module1 -v=3
    migrix migrate --all
    migrix migrate --installed
    migrix migrate --installed --modules=extramodule --packages=extrapackage
    migrix migrate --all -v
`

// HelpText returns the usage text of the migrate command.
func HelpText() string {
	return helpTextConstant
}
