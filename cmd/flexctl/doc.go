// Command flexctl maintains the companion tables that hold flex
// attributes.
//
//	# Create companion tables for every model in flex.yml
//	flexctl migrate
//
//	# Inspect and edit the attributes of one owner
//	flexctl attributes list Paris 1
//	flexctl attributes set Paris 1 has_brie_and_cheese=true
//	flexctl attributes purge Paris 1
//
//	# Show where each setting comes from
//	flexctl configuration show
//
// Applications enable flex attributes in code with flex.Enable; flexctl
// only needs the same companion options, which it reads from the models
// section of flex.yml.
package main
